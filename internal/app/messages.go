package app

// DefaultLogSize is how many table messages a snapshot carries.
const DefaultLogSize = 80

// MessageLog is a bounded ring of human-readable table messages.
type MessageLog struct {
	lines []string
	start int
	size  int
}

// NewMessageLog keeps the last capacity lines. Capacity below 1 uses the default.
func NewMessageLog(capacity int) *MessageLog {
	if capacity < 1 {
		capacity = DefaultLogSize
	}
	return &MessageLog{lines: make([]string, capacity)}
}

// Add appends a line, dropping the oldest when full.
func (l *MessageLog) Add(line string) {
	if l.size < len(l.lines) {
		l.lines[(l.start+l.size)%len(l.lines)] = line
		l.size++
		return
	}
	l.lines[l.start] = line
	l.start = (l.start + 1) % len(l.lines)
}

// Lines returns the retained lines, oldest first.
func (l *MessageLog) Lines() []string {
	out := make([]string, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.lines[(l.start+i)%len(l.lines)]
	}
	return out
}

// Reset drops every line.
func (l *MessageLog) Reset() {
	l.start, l.size = 0, 0
}

// Len is the number of retained lines.
func (l *MessageLog) Len() int { return l.size }
