package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/go-drift/clockface/cmd/clockface/internal/config"
	"github.com/go-drift/clockface/pkg/clockface"
	"github.com/go-drift/clockface/pkg/clockstate"
	"github.com/go-drift/clockface/pkg/engine"
	clockerrors "github.com/go-drift/clockface/pkg/errors"
	"github.com/go-drift/clockface/pkg/lifecycle"
	"github.com/go-drift/clockface/pkg/logging"
	"github.com/go-drift/clockface/pkg/metrics"
	"github.com/go-drift/clockface/pkg/restoration"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run a live clock",
		Long: `Run a live clock face.

The displayed time is restored from the restoration file, refreshed once
per second while the clock is resumed, and saved again on exit.

Flags:
  --fps N              Frame rate (default: render.fps)
  --debug-addr ADDR    Serve the debug endpoints on ADDR (default: debug.addr)
  --out FILE           Write the current frame to FILE periodically
  --out-interval DUR   Period of --out (default: 1s)

Signals:
  SIGUSR1              Pause: stop refreshing the time
  SIGUSR2              Resume
  SIGHUP               Save the displayed time, reload the config, rebuild
                       the face and restore the saved time into it
  SIGINT, SIGTERM      Save the displayed time and exit`,
		Usage: "clockface run [--fps N] [--debug-addr ADDR] [--out FILE] [--out-interval DUR]",
		Run:   runRun,
	})
}

type runOptions struct {
	fps         int
	debugAddr   string
	out         string
	outInterval time.Duration
}

func parseRunArgs(args []string, cfg *config.Resolved) (runOptions, error) {
	opts := runOptions{
		fps:         cfg.FPS,
		debugAddr:   cfg.DebugAddr,
		outInterval: time.Second,
	}
	err := parseFlags(args,
		positiveIntFlag("--fps", &opts.fps, 240),
		stringFlag("--debug-addr", &opts.debugAddr),
		stringFlag("--out", &opts.out),
		durationFlag("--out-interval", &opts.outInterval),
	)
	return opts, err
}

func runRun(args []string) error {
	cfg, err := config.Resolve(configPath, Version)
	if err != nil {
		return err
	}
	opts, err := parseRunArgs(args, cfg)
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 4)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(signals)

	a, err := newApp(configPath, cfg, opts, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	defer a.close()
	return a.run(context.Background(), signals)
}

// app is one running clock: the engine, the lifecycle service and the
// current session.
type app struct {
	path     string
	opts     runOptions
	clock    clockwork.Clock
	logger   logging.Logger
	closer   io.Closer
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	svc      *lifecycle.Service
	eng      *engine.Engine
	debug    *engine.DebugServer

	mu      sync.Mutex
	cfg     *config.Resolved
	session *session
}

// session is the state, face and refresh loop built from one configuration.
type session struct {
	state  *clockstate.State
	face   *clockface.Face
	cancel context.CancelFunc
	done   chan struct{}
}

func newApp(path string, cfg *config.Resolved, opts runOptions, clk clockwork.Clock) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	logger, closer, err := logging.Open(cfg.Log, m.LogHook())
	if err != nil {
		return nil, clockerrors.Wrap("run.logging", clockerrors.KindIO, err)
	}
	clockerrors.SetHandler(&clockerrors.LogHandler{Logger: logger.WithField("component", "errors")})

	return &app{
		path:     path,
		opts:     opts,
		clock:    clk,
		logger:   logger,
		closer:   closer,
		registry: registry,
		metrics:  m,
		svc:      lifecycle.NewService(lifecycle.StateResumed),
		eng: engine.New(engine.Options{
			FPS:     opts.fps,
			Clock:   clk,
			Metrics: m,
			Logger:  logger,
		}),
		cfg: cfg,
	}, nil
}

func (a *app) close() {
	clockerrors.SetHandler(nil)
	a.closer.Close()
}

func (a *app) run(ctx context.Context, signals <-chan os.Signal) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	cfg := a.cfg
	a.session = a.startSession(runCtx, cfg, a.restoreState(cfg))
	a.mu.Unlock()

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		a.eng.Run(runCtx)
	}()

	if a.opts.debugAddr != "" {
		debug, err := a.eng.StartDebugServer(a.opts.debugAddr, engine.DebugOptions{
			Lifecycle:   a.svc,
			Gatherer:    a.registry,
			Supersample: cfg.Supersample,
		})
		if err != nil {
			cancel()
			<-engineDone
			a.stopSession()
			return clockerrors.Wrap("run.debug", clockerrors.KindIO, err)
		}
		a.debug = debug
	}

	var outTick <-chan time.Time
	if a.opts.out != "" {
		ticker := a.clock.NewTicker(a.opts.outInterval)
		defer ticker.Stop()
		outTick = ticker.Chan()
	}

	a.logger.WithFields(logrus.Fields{
		"version": Version,
		"fps":     a.opts.fps,
		"config":  a.path,
	}).Info("clock running")

	for {
		select {
		case <-ctx.Done():
			return a.shutdown(cancel, engineDone)
		case <-outTick:
			a.writeOut()
		case sig := <-signals:
			a.logger.WithField("signal", sig.String()).Debug("signal received")
			switch sig {
			case syscall.SIGUSR1:
				a.svc.Update(lifecycle.StatePaused)
			case syscall.SIGUSR2:
				a.svc.Update(lifecycle.StateResumed)
			case syscall.SIGHUP:
				a.reconfigure(runCtx)
			default:
				return a.shutdown(cancel, engineDone)
			}
		}
	}
}

// startSession builds a face for state and runs its refresh loop whenever
// the lifecycle service is resumed.
func (a *app) startSession(ctx context.Context, cfg *config.Resolved, state *clockstate.State) *session {
	face := clockface.NewFace(state, cfg.Style,
		clockface.WithDispatcher(a.eng.Dispatch),
		clockface.WithTransitionObserver(func(hand string, kind clockface.TransitionKind) {
			a.metrics.HandTransition(hand, kind.String())
		}),
	)
	a.eng.SetFace(face)

	source := countingSource{
		source:  &clockstate.SystemSource{Clock: a.clock, Location: cfg.Location},
		metrics: a.metrics,
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	s := &session{state: state, face: face, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		lifecycle.RepeatOnResumed(sessionCtx, a.svc, func(ctx context.Context) error {
			return state.Run(ctx, source, a.clock)
		})
	}()
	return s
}

// stopSession stops the refresh loop and disposes the face. The state stays
// readable for the snapshot.
func (a *app) stopSession() *clockstate.State {
	a.mu.Lock()
	s := a.session
	a.mu.Unlock()
	if s == nil {
		return nil
	}
	s.cancel()
	<-s.done
	s.face.Dispose()
	return s.state
}

// restoreState returns the state saved in cfg's restoration file, or a
// fresh reading when nothing was saved.
func (a *app) restoreState(cfg *config.Resolved) *clockstate.State {
	bucket, err := restoration.Load(cfg.RestoreFile)
	if err != nil {
		report("run.restore", err)
		bucket = restoration.NewBucket()
	}
	values, ok := bucket.Get(clockface.StateRestorationID)
	if !ok || len(values) != 2 {
		source := &clockstate.SystemSource{Clock: a.clock, Location: cfg.Location}
		return clockstate.NewState(source.Now())
	}
	a.logger.WithFields(logrus.Fields{
		"date": values[0],
		"time": values[1],
	}).Info("restoring displayed time")
	return clockstate.RestoreOrZero(values[0], values[1])
}

// saveSnapshot stores state under the clock's restoration ID, keeping any
// other IDs already in the file.
func (a *app) saveSnapshot(path string, state *clockstate.State) (string, string, error) {
	bucket, err := restoration.Load(path)
	if err != nil {
		report("run.snapshot", err)
		bucket = restoration.NewBucket()
	}
	date, tod := state.Serialize()
	bucket.Put(clockface.StateRestorationID, date, tod)
	if err := bucket.Save(path); err != nil {
		return date, tod, err
	}
	a.logger.WithFields(logrus.Fields{"date": date, "time": tod, "file": path}).Debug("snapshot saved")
	return date, tod, nil
}

// reconfigure saves the displayed time, reloads the config file, rebuilds
// the face and restores the saved time into it. A config that fails to
// load keeps the current one.
func (a *app) reconfigure(ctx context.Context) {
	a.mu.Lock()
	current := a.cfg
	a.mu.Unlock()

	state := a.stopSession()
	date, tod, err := a.saveSnapshot(current.RestoreFile, state)
	if err != nil {
		report("run.reconfigure", err)
	}

	cfg, err := config.Resolve(a.path, Version)
	if err != nil {
		report("run.reconfigure", err)
		a.logger.Warning("config reload failed, keeping the current configuration")
		cfg = current
	} else if cfg.FPS != current.FPS || cfg.Log != current.Log || cfg.DebugAddr != current.DebugAddr {
		a.logger.Warning("render.fps, log and debug settings take effect on restart")
	}

	restored := clockstate.RestoreOrZero(date, tod)
	a.mu.Lock()
	a.cfg = cfg
	a.session = a.startSession(ctx, cfg, restored)
	a.mu.Unlock()
	a.logger.WithField("config", a.path).Info("configuration reloaded")
}

func (a *app) shutdown(cancel context.CancelFunc, engineDone <-chan struct{}) error {
	a.svc.Update(lifecycle.StateDetached)
	state := a.stopSession()
	cancel()
	<-engineDone
	if a.debug != nil {
		a.debug.Stop()
	}

	a.mu.Lock()
	path := a.cfg.RestoreFile
	a.mu.Unlock()
	if _, _, err := a.saveSnapshot(path, state); err != nil {
		return err
	}
	a.logger.Info("clock stopped")
	return nil
}

// writeOut writes the latest frame to the --out file.
func (a *app) writeOut() {
	a.mu.Lock()
	cfg := a.cfg
	a.mu.Unlock()

	opts := renderOptions{
		size:        cfg.Size,
		supersample: cfg.Supersample,
		format:      "png",
	}
	if strings.EqualFold(filepath.Ext(a.opts.out), ".svg") {
		opts.format = "svg"
	}
	err := writeFrameFile(a.eng, a.opts.out, opts)
	switch {
	case errors.Is(err, engine.ErrNoFrame):
		a.logger.WithField("file", a.opts.out).Debug("no frame yet, skipping --out")
	case err != nil:
		report("run.out", err)
	}
}

// currentFace returns the face of the running session.
func (a *app) currentFace() *clockface.Face {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil
	}
	return a.session.face
}

// countingSource counts every reading into the refresh tick metric.
type countingSource struct {
	source  clockstate.Source
	metrics *metrics.Metrics
}

func (s countingSource) Now() (clockstate.Date, clockstate.TimeOfDay) {
	s.metrics.RefreshTick()
	return s.source.Now()
}

// report hands err to the global error handler, keeping its ClockError
// fields when it has them.
func report(op string, err error) {
	var ce *clockerrors.ClockError
	if errors.As(err, &ce) {
		clockerrors.Report(ce)
		return
	}
	clockerrors.Report(&clockerrors.ClockError{Op: op, Kind: clockerrors.KindUnknown, Err: err})
}
