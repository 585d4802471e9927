package terminal

// buffer is a capacity-bounded FIFO of lines. Appending beyond the capacity
// evicts the oldest line first. It is not safe for concurrent use, the
// owning terminal serializes access.
type buffer struct {
	lines    []Line
	start    int
	count    int
	capacity int
}

func newBuffer(capacity int) *buffer {
	return &buffer{
		lines:    make([]Line, capacity),
		capacity: capacity,
	}
}

// append adds a line and reports whether an old line has been evicted.
func (b *buffer) append(line Line) bool {
	evicted := false

	if b.count == b.capacity {
		b.start = (b.start + 1) % b.capacity
		b.count--
		evicted = true
	}

	b.lines[(b.start+b.count)%b.capacity] = line
	b.count++

	return evicted
}

// all returns the buffered lines in insertion order.
func (b *buffer) all() []Line {
	lines := make([]Line, 0, b.count)

	for i := 0; i < b.count; i++ {
		lines = append(lines, b.lines[(b.start+i)%b.capacity])
	}

	return lines
}

func (b *buffer) clear() {
	b.start = 0
	b.count = 0
}

func (b *buffer) size() int {
	return b.count
}
