package layout

import (
	"errors"
	"fmt"
)

// Queue is a single-threaded deferred-call queue.
//
// Tasks deferred while the current intent is processed run, in FIFO order,
// when the queue is flushed after the render commit. A task that defers
// another task during the flush gets it run in the same flush.
//
// Queue is not safe for concurrent use.
type Queue struct {
	tasks    []task
	flushing bool
}

type task struct {
	name string
	fn   func() error
}

// Defer schedules fn to run at the next flush.
func (q *Queue) Defer(name string, fn func() error) {
	q.tasks = append(q.tasks, task{name: name, fn: fn})
}

// Pending returns the number of tasks waiting for a flush.
func (q *Queue) Pending() int {
	return len(q.tasks)
}

// Flush runs all pending tasks. Every task runs even if an earlier one fails;
// the failures are joined into the returned error.
func (q *Queue) Flush() error {
	if q.flushing {
		// Re-entrant flush: the outer loop picks up new tasks.
		return nil
	}
	q.flushing = true
	defer func() { q.flushing = false }()

	var errs []error
	for len(q.tasks) > 0 {
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		if err := t.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		}
	}
	q.tasks = nil
	return errors.Join(errs...)
}
