package cmd

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/go-drift/clockface/cmd/clockface/internal/config"
	"github.com/go-drift/clockface/pkg/clockface"
	"github.com/go-drift/clockface/pkg/clockstate"
	"github.com/go-drift/clockface/pkg/lifecycle"
	"github.com/go-drift/clockface/pkg/restoration"
)

func resolvedDefaults(t *testing.T) *config.Resolved {
	t.Helper()
	cfg, err := config.Resolve(filepath.Join(t.TempDir(), "absent.yaml"), Version)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

type testApp struct {
	*app
	clock   *clockwork.FakeClock
	dir     string
	cfgPath string
	restore string
}

func writeRunConfig(t *testing.T, path, restore, extra string) {
	t.Helper()
	body := "location: UTC\nlog:\n  level: error\nrestore:\n  file: " + restore + "\n" + extra
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestApp(t *testing.T, opts runOptions) *testApp {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "clockface.yaml")
	restore := filepath.Join(dir, "state", "restore.yaml")
	writeRunConfig(t, cfgPath, restore, "")

	cfg, err := config.Resolve(cfgPath, Version)
	if err != nil {
		t.Fatal(err)
	}
	if opts.fps == 0 {
		opts.fps = cfg.FPS
	}
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.May, 6, 7, 8, 9, 0, time.UTC))
	a, err := newApp(cfgPath, cfg, opts, clock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.close)
	return &testApp{app: a, clock: clock, dir: dir, cfgPath: cfgPath, restore: restore}
}

func (a *testApp) state() *clockstate.State {
	face := a.currentFace()
	if face == nil {
		return nil
	}
	return face.State()
}

func tod(h, m, s int) clockstate.TimeOfDay {
	return clockstate.TimeOfDay{Hour: h, Minute: m, Second: s}
}

func TestRunLifecycleReconfigureAndShutdown(t *testing.T) {
	a := newTestApp(t, runOptions{outInterval: time.Second})
	a.opts.out = filepath.Join(a.dir, "out", "clock.png")

	signals := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- a.run(context.Background(), signals) }()

	eventually(t, "refresh loop", func() bool {
		s := a.state()
		return s != nil && s.IsRunning()
	})
	if got := a.state().Time(); got != tod(7, 8, 9) {
		t.Errorf("first reading = %v", got)
	}

	signals <- syscall.SIGUSR1
	eventually(t, "pause", func() bool {
		return a.svc.State() == lifecycle.StatePaused && !a.state().IsRunning()
	})

	signals <- syscall.SIGUSR2
	eventually(t, "resume", func() bool { return a.state().IsRunning() })

	// An --out tick before the first frame has nothing to write.
	eventually(t, "first frame", func() bool { return a.eng.LatestFrame() != nil })

	// frame ticker, --out ticker and the refresh timer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.clock.BlockUntilContext(ctx, 3); err != nil {
		t.Fatalf("waiting for timers: %v", err)
	}
	a.clock.Advance(time.Second)
	eventually(t, "next reading", func() bool { return a.state().Time() == tod(7, 8, 10) })
	eventually(t, "--out frame", func() bool {
		_, err := os.Stat(a.opts.out)
		return err == nil
	})

	writeRunConfig(t, a.cfgPath, a.restore, "clock:\n  hour_count: 24\n")
	signals <- syscall.SIGHUP
	eventually(t, "reconfigured face", func() bool {
		face := a.currentFace()
		return face != nil && face.Style().HourCount == 24
	})
	if got := a.state().Time(); got != tod(7, 8, 10) {
		t.Errorf("restored reading = %v", got)
	}

	signals <- syscall.SIGTERM
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
	}
	if a.svc.State() != lifecycle.StateDetached {
		t.Errorf("lifecycle = %s, want detached", a.svc.State())
	}

	bucket, err := restoration.Load(a.restore)
	if err != nil {
		t.Fatal(err)
	}
	saved, _ := bucket.Get(clockface.StateRestorationID)
	if diff := cmp.Diff([]string{"2024-05-06", "07:08:10"}, saved); diff != "" {
		t.Errorf("snapshot (-want +got):\n%s", diff)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	a := newTestApp(t, runOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx, nil) }()

	eventually(t, "refresh loop", func() bool {
		s := a.state()
		return s != nil && s.IsRunning()
	})
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
	}
	if _, err := os.Stat(a.restore); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}

func TestRestoreState(t *testing.T) {
	a := newTestApp(t, runOptions{})
	cfg := a.cfg

	// Nothing saved: a fresh reading.
	if got := a.restoreState(cfg).Time(); got != tod(7, 8, 9) {
		t.Errorf("fresh state = %v", got)
	}

	bucket := restoration.NewBucket()
	bucket.Put("other", "kept")
	bucket.Put(clockface.StateRestorationID, "2023-02-03", "04:05:06")
	if err := bucket.Save(cfg.RestoreFile); err != nil {
		t.Fatal(err)
	}
	d, tm := a.restoreState(cfg).Snapshot()
	if d.String() != "2023-02-03" || tm.String() != "04:05:06" {
		t.Errorf("restored = %v %v", d, tm)
	}

	bucket.Put(clockface.StateRestorationID, "2023-02-30", "04:05:06")
	if err := bucket.Save(cfg.RestoreFile); err != nil {
		t.Fatal(err)
	}
	d, tm = a.restoreState(cfg).Snapshot()
	if d != clockstate.ZeroDate || tm != clockstate.ZeroTime {
		t.Errorf("corrupt snapshot restored %v %v, want zero", d, tm)
	}

	if _, _, err := a.saveSnapshot(cfg.RestoreFile, clockstate.NewZeroState()); err != nil {
		t.Fatal(err)
	}
	reloaded, err := restoration.Load(cfg.RestoreFile)
	if err != nil {
		t.Fatal(err)
	}
	if other, _ := reloaded.Get("other"); len(other) != 1 || other[0] != "kept" {
		t.Errorf("other IDs lost: %v", reloaded.IDs())
	}
}

func TestParseRunArgs(t *testing.T) {
	cfg := resolvedDefaults(t)
	opts, err := parseRunArgs([]string{"--fps", "30", "--out", "x.png", "--out-interval", "5s"}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.fps != 30 || opts.out != "x.png" || opts.outInterval != 5*time.Second || opts.debugAddr != "" {
		t.Errorf("opts = %+v", opts)
	}
	if _, err := parseRunArgs([]string{"--fps", "500"}, cfg); err == nil {
		t.Error("fps above 240 should fail")
	}
}

func TestWriteOutBeforeFirstFrame(t *testing.T) {
	a := newTestApp(t, runOptions{outInterval: time.Second})
	a.opts.out = filepath.Join(a.dir, "clock.png")

	a.writeOut()
	if _, err := os.Stat(a.opts.out); !os.IsNotExist(err) {
		t.Fatalf("--out written before any frame: %v", err)
	}
	if _, err := os.Stat(a.opts.out + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	face := clockface.NewFace(clockstate.NewZeroState(), a.cfg.Style)
	t.Cleanup(face.Dispose)
	a.eng.SetFace(face)
	a.eng.StepFrame()
	a.writeOut()
	if _, err := os.Stat(a.opts.out); err != nil {
		t.Errorf("--out not written after the first frame: %v", err)
	}
}
