package input

import "sync"

// Queue is a Source fed from another goroutine, typically the UI event loop.
type Queue struct {
	mu      sync.Mutex
	pending []Event
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()
}

// Poll drains and returns every pending event in delivery order.
func (q *Queue) Poll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

// Script replays fixed batches, one per Poll, then returns nothing.
type Script struct {
	batches [][]Event
	polls   int
}

// NewScript returns a Script yielding batches in order.
func NewScript(batches ...[]Event) *Script {
	return &Script{batches: batches}
}

// Poll returns the next batch.
func (s *Script) Poll() []Event {
	s.polls++
	if len(s.batches) == 0 {
		return nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b
}

// Polls returns how many times Poll was called.
func (s *Script) Polls() int {
	return s.polls
}

// Repeat yields the same batch on every Poll.
type Repeat []Event

// Poll returns a copy of the batch.
func (r Repeat) Poll() []Event {
	return append([]Event(nil), r...)
}
