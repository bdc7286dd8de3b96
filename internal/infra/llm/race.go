package llm

import (
	"context"
	"time"
)

// raceDeadline runs call concurrently with a deadline timer. Both observe the
// same cancellation context; whichever resolves first decides the envelope.
//
// When the timer (or the parent ctx) wins, the call's context is cancelled and
// raceDeadline waits for call to return, so the aborted connection is closed
// before the caller sees the outcome. The late envelope is discarded.
func raceDeadline(ctx context.Context, deadline time.Duration, call func(context.Context) Envelope) Envelope {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	done := make(chan Envelope, 1)
	go func() { done <- call(callCtx) }()

	select {
	case env := <-done:
		return env
	case <-timer.C:
		cancel()
		<-done
		return Envelope{Status: StatusTimeout, Err: ErrDeadlineExceeded}
	case <-ctx.Done():
		cancel()
		<-done
		return Envelope{Status: StatusAborted, Err: ErrAborted}
	}
}
