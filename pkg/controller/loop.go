package controller

import (
	"context"
	"io"

	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/upload"
)

// ErrLoopStopped is returned by calls made after the loop has exited.
var ErrLoopStopped = errors.New(errors.ErrCodeInternal, "controller loop stopped")

// Loop serializes access to a [Controller] from many goroutines.
//
// Every call is executed on the goroutine running [Loop.Run], one at a time,
// so the controller never sees concurrent intents.
type Loop struct {
	c    *Controller
	reqs chan request
	done chan struct{}
}

type request struct {
	fn    func(*Controller) error
	reply chan error
}

// NewLoop creates a loop around c. Call Run to start processing.
func NewLoop(c *Controller) *Loop {
	return &Loop{
		c:    c,
		reqs: make(chan request),
		done: make(chan struct{}),
	}
}

// Run processes calls until ctx is done. It must be called exactly once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-l.reqs:
			req.reply <- req.fn(l.c)
		}
	}
}

// Do runs fn on the loop goroutine and returns its error.
// Do returns early with ctx.Err() if ctx is done first; fn may still run.
func (l *Loop) Do(ctx context.Context, fn func(*Controller) error) error {
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case l.reqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit dispatches an intent on the loop goroutine.
func (l *Loop) Submit(ctx context.Context, intent Intent) (Result, error) {
	out := make(chan Result, 1)
	err := l.Do(ctx, func(c *Controller) error {
		res, err := c.Dispatch(ctx, intent)
		out <- res
		return err
	})
	select {
	case res := <-out:
		return res, err
	default:
		return Result{}, err
	}
}

// Upload decodes an image on the calling goroutine and then submits the
// resulting SetImage intent, so a slow decode never blocks the loop.
func (l *Loop) Upload(ctx context.Context, id int, r io.Reader) (Result, error) {
	if err := l.Do(ctx, func(c *Controller) error {
		_, err := c.Tile(id)
		return err
	}); err != nil {
		return Result{}, err
	}

	res, err := upload.Wait(ctx, l.c.decoder.Start(r))
	if err != nil {
		return Result{}, err
	}
	return l.Submit(ctx, SetImage{ID: id, Data: res.Data})
}
