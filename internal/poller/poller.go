// Package poller implements the fixed-interval retry-until-terminal driver
// used to follow asynchronous translation jobs.
//
// A Driver issues exactly one request at a time: the next attempt is scheduled
// only after the previous response has been fully received. There is no
// attempt cap; a job that never reaches a terminal state is an unbounded wait,
// not an error. Drivers have no cancellation primitive of their own; the
// context passed to Run is the process-shutdown context, and discarding
// results from superseded drivers is the caller's responsibility.
package poller

import (
	"context"
	"errors"
	"time"
)

// Driver polls one asynchronous request until its terminal predicate holds.
type Driver[T any] struct {
	// Interval is the fixed delay between non-terminal responses.
	Interval time.Duration
	// Fetch issues the status request and returns the full response.
	Fetch func(context.Context) (T, error)
	// Terminal reports whether a response ends the poll.
	Terminal func(T) bool
	// Done receives the terminal response. Invoked exactly once.
	Done func(T)
	// Fail receives a request error. Failed requests are not retried;
	// implicit retry applies only to non-terminal responses.
	Fail func(error)
}

// Run drives the poll loop to completion. It blocks until the terminal
// response is handled, a request fails, or ctx is cancelled at shutdown.
func (d *Driver[T]) Run(ctx context.Context) {
	if d.Fetch == nil || d.Terminal == nil {
		d.fail(errors.New("poller: fetch and terminal predicate are required"))
		return
	}
	for {
		resp, err := d.Fetch(ctx)
		if err != nil {
			d.fail(err)
			return
		}
		if d.Terminal(resp) {
			if d.Done != nil {
				d.Done(resp)
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.Interval):
		}
	}
}

func (d *Driver[T]) fail(err error) {
	if d.Fail != nil {
		d.Fail(err)
	}
}
