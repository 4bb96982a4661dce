package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	clockerrors "github.com/go-drift/clockface/pkg/errors"
)

func TestParseState(t *testing.T) {
	for _, s := range States {
		got, err := ParseState(string(s))
		if err != nil || got != s {
			t.Errorf("ParseState(%q) = %q, %v", s, got, err)
		}
	}
	_, err := ParseState("sleeping")
	var pe *clockerrors.ParseError
	if !errors.As(err, &pe) || pe.Input != "sleeping" {
		t.Errorf("ParseState(sleeping) error = %v", err)
	}
}

func TestServiceHandlers(t *testing.T) {
	svc := NewService(StateResumed)

	var got []State
	remove := svc.AddHandler(func(s State) { got = append(got, s) })
	var second []State
	svc.AddHandler(func(s State) { second = append(second, s) })

	if err := svc.Update(StatePaused); err != nil {
		t.Fatal(err)
	}
	if err := svc.Update(StatePaused); err != nil {
		t.Fatal(err)
	}
	remove()
	if err := svc.Update(StateResumed); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]State{StatePaused}, got); diff != "" {
		t.Errorf("removed handler (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]State{StatePaused, StateResumed}, second); diff != "" {
		t.Errorf("second handler (-want +got):\n%s", diff)
	}
	if !svc.IsResumed() {
		t.Error("IsResumed() = false")
	}
}

func TestServiceRejectsUnknownState(t *testing.T) {
	svc := NewService(StateResumed)
	err := svc.Update(State("bogus"))
	var ce *clockerrors.ClockError
	if !errors.As(err, &ce) || ce.Kind != clockerrors.KindLifecycle {
		t.Fatalf("Update(bogus) error = %v", err)
	}
	if svc.State() != StateResumed {
		t.Errorf("state changed to %q", svc.State())
	}
}

// runRecorder records starts and stops of the block passed to RepeatOnResumed.
type runRecorder struct {
	mu      sync.Mutex
	events  []string
	started chan int
	stopped chan int
	runs    int
}

func newRunRecorder() *runRecorder {
	return &runRecorder{started: make(chan int, 8), stopped: make(chan int, 8)}
}

func (r *runRecorder) block(ctx context.Context) error {
	r.mu.Lock()
	r.runs++
	n := r.runs
	r.events = append(r.events, "start")
	r.mu.Unlock()
	r.started <- n

	<-ctx.Done()

	r.mu.Lock()
	r.events = append(r.events, "stop")
	r.mu.Unlock()
	r.stopped <- n
	return nil
}

func wait(t *testing.T, ch <-chan int, what string) int {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return 0
	}
}

func TestRepeatOnResumed(t *testing.T) {
	svc := NewService(StateResumed)
	rec := newRunRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RepeatOnResumed(ctx, svc, rec.block) }()

	if n := wait(t, rec.started, "first start"); n != 1 {
		t.Fatalf("first run = %d", n)
	}

	svc.Update(StateInactive)
	wait(t, rec.stopped, "stop on inactive")

	svc.Update(StatePaused)
	svc.Update(StateResumed)
	if n := wait(t, rec.started, "restart"); n != 2 {
		t.Fatalf("second run = %d", n)
	}

	cancel()
	wait(t, rec.stopped, "stop on cancel")
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RepeatOnResumed = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RepeatOnResumed did not return")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if diff := cmp.Diff([]string{"start", "stop", "start", "stop"}, rec.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestRepeatOnResumedWaitsForResume(t *testing.T) {
	svc := NewService(StatePaused)
	rec := newRunRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go RepeatOnResumed(ctx, svc, rec.block)

	select {
	case <-rec.started:
		t.Fatal("block started while paused")
	case <-time.After(50 * time.Millisecond):
	}

	svc.Update(StateResumed)
	wait(t, rec.started, "start on resume")
	cancel()
	wait(t, rec.stopped, "stop on cancel")
}

type captureHandler struct {
	mu   sync.Mutex
	errs []*clockerrors.ClockError
}

func (h *captureHandler) HandleError(err *clockerrors.ClockError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *captureHandler) HandlePanic(*clockerrors.PanicError) {}

func TestRepeatOnResumedReportsErrors(t *testing.T) {
	h := &captureHandler{}
	clockerrors.SetHandler(h)
	t.Cleanup(func() { clockerrors.SetHandler(nil) })

	svc := NewService(StateResumed)
	ran := make(chan struct{})
	boom := errors.New("boom")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RepeatOnResumed(ctx, svc, func(context.Context) error {
			close(ran)
			return boom
		})
	}()
	<-ran
	cancel()
	<-done

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.errs) != 1 || !errors.Is(h.errs[0], boom) || h.errs[0].Kind != clockerrors.KindLifecycle {
		t.Errorf("reported = %+v", h.errs)
	}
}
