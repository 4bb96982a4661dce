package lifecycle

import (
	"context"

	clockerrors "github.com/go-drift/clockface/pkg/errors"
)

// RepeatOnResumed runs block each time svc enters StateResumed and cancels
// it when svc leaves that state, waiting for it to return. Re-entering the
// resumed state starts a fresh run. If svc is already resumed, block starts
// immediately.
//
// RepeatOnResumed returns nil once ctx is done and the last run of block
// has returned. Errors returned by block are reported, not propagated.
func RepeatOnResumed(ctx context.Context, svc *Service, block func(context.Context) error) error {
	changes := make(chan State, 16)
	remove := svc.AddHandler(func(state State) {
		select {
		case changes <- state:
		case <-ctx.Done():
		}
	})
	defer remove()

	var (
		cancel context.CancelFunc
		done   chan struct{}
	)
	start := func() {
		if cancel != nil {
			return
		}
		runCtx, runCancel := context.WithCancel(ctx)
		finished := make(chan struct{})
		cancel, done = runCancel, finished
		go func() {
			defer close(finished)
			defer clockerrors.Recover("lifecycle.RepeatOnResumed")
			if err := block(runCtx); err != nil {
				clockerrors.Report(&clockerrors.ClockError{
					Op:   "lifecycle.RepeatOnResumed",
					Kind: clockerrors.KindLifecycle,
					Err:  err,
				})
			}
		}()
	}
	stop := func() {
		if cancel == nil {
			return
		}
		cancel()
		<-done
		cancel, done = nil, nil
	}

	if svc.IsResumed() {
		start()
	}
	for {
		select {
		case <-ctx.Done():
			stop()
			return nil
		case state := <-changes:
			if state == StateResumed {
				start()
			} else {
				stop()
			}
		}
	}
}
