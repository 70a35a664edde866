package chat

import "sync"

// History is a fixed-size circular buffer of chat events replayed to newly
// rendered pages. Live sockets never receive replayed events, and nothing
// survives a restart.
type History struct {
	mu   sync.RWMutex
	data []Event
	head int // next write position
	size int // current number of elements
	cap  int
}

// NewHistory creates a History holding at most capacity events. A zero
// capacity disables recording.
func NewHistory(capacity int) *History {
	return &History{
		data: make([]Event, capacity),
		cap:  capacity,
	}
}

// Add appends an event, overwriting the oldest when full.
func (h *History) Add(ev Event) {
	if h.cap == 0 {
		return
	}

	h.mu.Lock()
	h.data[h.head] = ev
	h.head = (h.head + 1) % h.cap
	if h.size < h.cap {
		h.size++
	}
	h.mu.Unlock()
}

// Recent returns the buffered events in chronological order, oldest first.
func (h *History) Recent() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.size == 0 {
		return nil
	}

	result := make([]Event, h.size)

	if h.size < h.cap {
		copy(result, h.data[:h.size])
	} else {
		// Full buffer: head points at the oldest element.
		copy(result, h.data[h.head:])
		copy(result[h.cap-h.head:], h.data[:h.head])
	}

	return result
}

// Len returns the current number of buffered events.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}
