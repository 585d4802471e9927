package terminal

import (
	"sync"
	"time"

	"github.com/klever-desktop/core/event"
	"github.com/klever-desktop/core/log"

	"github.com/google/uuid"
)

// Terminal is the single entry point for ingesting output lines and tracking
// background operations. All mutations are serialized, concurrent callers
// are expected.
type Terminal interface {
	// AppendLine ingests one line of output. The severity is derived by the
	// configured classifier. processID may be empty for unattributed lines.
	AppendLine(source Source, processID string, channel Channel, content string)

	// RegisterProcess starts tracking an operation with status running. A
	// prior entry with the same id is replaced.
	RegisterProcess(id, name string, source Source)

	// UpdateProcess applies a partial update. Unknown ids are ignored.
	UpdateProcess(id string, update ProcessUpdate)

	// RemoveProcess drops an entry from the registry.
	RemoveProcess(id string)

	// Processes returns all tracked operations in unspecified order.
	Processes() []Process

	// Lines returns the buffered lines for the given tab in insertion
	// order. SourceAll returns every line.
	Lines(tab Source) []Line

	// Clear drops all buffered lines. Tracked operations are unaffected.
	Clear()

	// Notifications returns the current badge state.
	Notifications() Notifications

	// Acknowledge resets the error and warning counters without touching
	// lines or process history.
	Acknowledge()

	// Stats returns cumulative ingestion counters.
	Stats() Stats
}

// Notifications is the badge state derived for the dashboard. Errors and
// Warnings count lines at that level since the last acknowledge.
type Notifications struct {
	Errors   int
	Warnings int
	Running  int
}

// Stats are cumulative counters over the lifetime of the terminal.
type Stats struct {
	Lines      uint64
	Errors     uint64
	Warnings   uint64
	Evicted    uint64
	BufferSize int
	Processes  int
}

// Config is the configuration for creating a new terminal.
type Config struct {
	// Capacity is the maximum number of buffered lines. If 0, a default
	// of 2000 lines is used.
	Capacity int

	// Classifier derives the severity of ingested lines. If nil, the
	// default glob classifier is used.
	Classifier Classifier

	// Events is an optional pub/sub on which line and process events are
	// published.
	Events *event.PubSub

	// Logger is an instance of a logger. If it is nil, no logs will be
	// written.
	Logger log.Logger
}

const defaultCapacity = 2000

type terminal struct {
	buffer     *buffer
	registry   *registry
	classifier Classifier

	// Badge counters since the last acknowledge. Maintained eagerly under
	// the same lock as the mutation that changes them.
	unackedErrors   int
	unackedWarnings int

	stats Stats

	events *event.PubSub
	logger log.Logger

	lock sync.RWMutex
}

// New returns a terminal implementing the Terminal interface.
func New(config Config) Terminal {
	t := &terminal{
		registry:   newRegistry(),
		classifier: config.Classifier,
		events:     config.Events,
		logger:     config.Logger,
	}

	capacity := config.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	t.buffer = newBuffer(capacity)

	if t.classifier == nil {
		t.classifier = NewDefaultClassifier()
	}

	if t.logger == nil {
		t.logger = log.New("")
	}

	return t
}

func (t *terminal) AppendLine(source Source, processID string, channel Channel, content string) {
	line := Line{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Source:    source,
		ProcessID: processID,
		Channel:   channel,
		Level:     t.classifier.Classify(channel, content),
		Text:      content,
	}

	t.lock.Lock()

	if t.buffer.append(line) {
		t.stats.Evicted++
	}

	t.stats.Lines++

	switch line.Level {
	case LevelError:
		t.unackedErrors++
		t.stats.Errors++
	case LevelWarning:
		t.unackedWarnings++
		t.stats.Warnings++
	}

	t.lock.Unlock()

	t.publishLine(line)
}

func (t *terminal) RegisterProcess(id, name string, source Source) {
	t.lock.Lock()
	p := t.registry.register(id, name, source)
	t.lock.Unlock()

	t.logger.Debug().WithFields(log.Fields{
		"id":     id,
		"name":   name,
		"source": source,
	}).Log("Process registered")

	t.publishProcess("register", p)
}

func (t *terminal) UpdateProcess(id string, update ProcessUpdate) {
	t.lock.Lock()
	p, ok := t.registry.update(id, update)
	t.lock.Unlock()

	if !ok {
		return
	}

	t.publishProcess("update", p)
}

func (t *terminal) RemoveProcess(id string) {
	t.lock.Lock()
	ok := t.registry.remove(id)
	t.lock.Unlock()

	if !ok {
		return
	}

	t.publishProcess("remove", Process{ID: id})
}

func (t *terminal) Processes() []Process {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.registry.list()
}

func (t *terminal) Lines(tab Source) []Line {
	t.lock.RLock()
	defer t.lock.RUnlock()

	lines := t.buffer.all()

	if tab == SourceAll || len(tab) == 0 {
		return lines
	}

	filtered := make([]Line, 0, len(lines))

	for _, line := range lines {
		if line.Source == tab {
			filtered = append(filtered, line)
		}
	}

	return filtered
}

func (t *terminal) Clear() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.buffer.clear()
}

func (t *terminal) Notifications() Notifications {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return Notifications{
		Errors:   t.unackedErrors,
		Warnings: t.unackedWarnings,
		Running:  t.registry.running(),
	}
}

func (t *terminal) Acknowledge() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.unackedErrors = 0
	t.unackedWarnings = 0
}

func (t *terminal) Stats() Stats {
	t.lock.RLock()
	defer t.lock.RUnlock()

	stats := t.stats
	stats.BufferSize = t.buffer.size()
	stats.Processes = len(t.registry.procs)

	return stats
}

func (t *terminal) publishLine(line Line) {
	if t.events == nil {
		return
	}

	t.events.Publish(&event.LineEvent{
		ID:        line.ID,
		Source:    line.Source.String(),
		ProcessID: line.ProcessID,
		Channel:   line.Channel.String(),
		Level:     line.Level.String(),
		Text:      line.Text,
		Timestamp: line.Timestamp,
	})
}

func (t *terminal) publishProcess(what string, p Process) {
	if t.events == nil {
		return
	}

	t.events.Publish(&event.ProcessEvent{
		ID:        p.ID,
		Name:      p.Name,
		Source:    p.Source.String(),
		Type:      what,
		Status:    p.Status.String(),
		Timestamp: time.Now(),
	})
}
