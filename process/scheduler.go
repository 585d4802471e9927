package process

import (
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// Scheduler tells a process when its next run is due. A schedule is either
// a cron pattern for recurring runs or an RFC3339 point in time for a
// single deferred run.
type Scheduler interface {
	// Next returns the duration until the next scheduled time in
	// reference to time.Now(). If there's no next scheduled time, a
	// negative duration and an error are returned.
	Next() (time.Duration, error)

	// NextAfter returns the same as Next(), but with the given reference
	// time.
	NextAfter(after time.Time) (time.Duration, error)
}

type scheduler struct {
	pattern string
	at      time.Time
	isCron  bool
}

// NewScheduler parses the given pattern as an RFC3339 timestamp or, failing
// that, as a cron pattern.
func NewScheduler(pattern string) (Scheduler, error) {
	s := &scheduler{}

	t, err := time.Parse(time.RFC3339, pattern)
	if err == nil {
		s.at = t

		return s, nil
	}

	cron := gronx.New()
	if !cron.IsValid(pattern) {
		return nil, err
	}

	s.pattern = pattern
	s.isCron = true

	return s, nil
}

func (s *scheduler) Next() (time.Duration, error) {
	return s.NextAfter(time.Now())
}

func (s *scheduler) NextAfter(after time.Time) (time.Duration, error) {
	t := s.at

	if s.isCron {
		next, err := gronx.NextTickAfter(s.pattern, after, false)
		if err != nil {
			return time.Duration(-1), fmt.Errorf("no next time has been scheduled")
		}

		t = next
	}

	d := t.Sub(after)
	if d < time.Duration(0) {
		return d, fmt.Errorf("no next time has been scheduled")
	}

	return d, nil
}
