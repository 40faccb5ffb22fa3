package indicator

import (
	"errors"
	"time"
)

// BlinkItem is one queued blink request: LEDs on for Duration, off for
// Sleep, repeated Count times. Queued items are played by the scheduler
// whenever no connection pattern is active.
type BlinkItem struct {
	Duration time.Duration
	Sleep    time.Duration
	Count    uint8
}

// ErrQueueFull is returned when the blink queue has no room left.
var ErrQueueFull = errors.New("blink queue full")

const queueDepth = 16

// Queue is a bounded FIFO of pending blink requests.
type Queue struct {
	ch chan BlinkItem
}

// NewQueue creates an empty blink queue.
func NewQueue() *Queue {
	return &Queue{ch: make(chan BlinkItem, queueDepth)}
}

// Enqueue adds a blink request without blocking.
func (q *Queue) Enqueue(item BlinkItem) error {
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// tryDequeue pops the next request if one is pending.
func (q *Queue) tryDequeue() (BlinkItem, bool) {
	select {
	case item := <-q.ch:
		return item, true
	default:
		return BlinkItem{}, false
	}
}

// Len returns the number of queued requests.
func (q *Queue) Len() int {
	return len(q.ch)
}
