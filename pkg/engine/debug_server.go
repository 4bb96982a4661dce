package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/clockface/pkg/clockface"
	"github.com/go-drift/clockface/pkg/clockstate"
	"github.com/go-drift/clockface/pkg/lifecycle"
	"github.com/go-drift/clockface/pkg/metrics"
)

// DebugOptions wires the optional parts of the debug server.
type DebugOptions struct {
	// Lifecycle enables POST /lifecycle.
	Lifecycle *lifecycle.Service
	// Gatherer enables /metrics.
	Gatherer prometheus.Gatherer
	// Supersample is used by /frame.png. Defaults to 1.
	Supersample int
}

// DebugServer serves frame and state inspection endpoints over HTTP.
type DebugServer struct {
	engine   *Engine
	opts     DebugOptions
	server   *http.Server
	listener net.Listener
	mu       sync.Mutex
}

// StateResponse is the /state response shape.
type StateResponse struct {
	Date        string           `json:"date"`
	Time        string           `json:"time"`
	Angles      clockface.Angles `json:"angles"`
	Animating   bool             `json:"animating"`
	Frames      uint64           `json:"frames"`
	AvgFrameMs  float64          `json:"avgFrameMs"`
	MaxFrameMs  float64          `json:"maxFrameMs"`
	Lifecycle   string           `json:"lifecycle,omitempty"`
	LoopRunning bool             `json:"loopRunning"`
}

// ReadingMessage is one /ws message.
type ReadingMessage struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func readingMessage(r clockstate.Reading) ReadingMessage {
	return ReadingMessage{Date: r.Date.String(), Time: r.Time.String()}
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	maxFrameSize   = 4096
	wsWriteTimeout = 5 * time.Second
	wsBuffer       = 16
)

// NewDebugServer creates a debug server for e. It does not listen until
// Start is called.
func NewDebugServer(e *Engine, opts DebugOptions) *DebugServer {
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	return &DebugServer{engine: e, opts: opts}
}

// StartDebugServer creates a debug server for e and starts listening on addr.
func (e *Engine) StartDebugServer(addr string, opts DebugOptions) (*DebugServer, error) {
	s := NewDebugServer(e, opts)
	if err := s.Start(addr); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the endpoint mux.
func (s *DebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/frame.png", s.handleFramePNG)
	mux.HandleFunc("/frame.svg", s.handleFrameSVG)
	mux.HandleFunc("/frames", s.handleFrames)
	mux.HandleFunc("/lifecycle", s.handleLifecycle)
	mux.HandleFunc("/ws", s.handleWebsocket)
	if s.opts.Gatherer != nil {
		mux.Handle("/metrics", metrics.Handler(s.opts.Gatherer))
	}
	return mux
}

// Start binds addr and serves in the background. Starting a running server
// is a no-op.
func (s *DebugServer) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return nil
	}

	// Bind first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("debug server listen: %w", err)
	}

	server := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			s.engine.logger.WithField("error", err).Error("debug server stopped")
		}
	}()

	s.engine.logger.WithField("addr", listener.Addr().String()).Info("debug server listening")
	return nil
}

// Addr returns the bound address, or nil when not running.
func (s *DebugServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully shuts the server down.
func (s *DebugServer) Stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

func (s *DebugServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *DebugServer) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	face := s.engine.Face()
	if face == nil {
		http.Error(w, "no face", http.StatusServiceUnavailable)
		return
	}
	date, tod := face.State().Snapshot()
	timings := s.engine.Timings()
	resp := StateResponse{
		Date:        date.String(),
		Time:        tod.String(),
		Angles:      face.Angles(),
		Animating:   face.IsAnimating(),
		Frames:      s.engine.FrameCount(),
		AvgFrameMs:  durationToMillis(timings.Average()),
		MaxFrameMs:  durationToMillis(timings.Max()),
		LoopRunning: face.State().IsRunning(),
	}
	if s.opts.Lifecycle != nil {
		resp.Lifecycle = string(s.opts.Lifecycle.State())
	}
	writeJSON(w, resp)
}

func (s *DebugServer) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame := s.engine.LatestFrame()
	if frame == nil {
		http.Error(w, "no frame", http.StatusServiceUnavailable)
		return
	}
	size, ok := sizeQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := RenderPNG(w, frame, size, s.opts.Supersample); err != nil {
		s.engine.logger.WithField("error", err).Warning("frame.png failed")
	}
}

func (s *DebugServer) handleFrameSVG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame := s.engine.LatestFrame()
	if frame == nil {
		http.Error(w, "no frame", http.StatusServiceUnavailable)
		return
	}
	size, ok := sizeQuery(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := RenderSVG(w, frame, size); err != nil {
		s.engine.logger.WithField("error", err).Warning("frame.svg failed")
	}
}

func (s *DebugServer) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := s.engine.Trace().Snapshot()
	applyFrameFilters(r, &resp)
	writeJSON(w, resp)
}

func (s *DebugServer) handleLifecycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.opts.Lifecycle == nil {
		http.Error(w, "lifecycle control disabled", http.StatusServiceUnavailable)
		return
	}

	state, err := lifecycle.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.opts.Lifecycle.Update(state); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.engine.logger.WithField("state", state).Info("lifecycle changed over debug server")
	writeJSON(w, map[string]string{"lifecycle": string(s.opts.Lifecycle.State())})
}

// handleWebsocket streams a ReadingMessage for the current reading and for
// every frame that shows a new one.
func (s *DebugServer) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	log := s.engine.logger.WithField("remote", r.RemoteAddr)
	log.Debug("websocket connected")

	readings := make(chan clockstate.Reading, wsBuffer)
	unsubscribe := s.engine.Subscribe(func(reading clockstate.Reading) {
		select {
		case readings <- reading:
		default:
			// Slow reader; it will catch up on the next change.
		}
	})
	defer unsubscribe()

	// read loop to detect disconnects
	disconnected := make(chan struct{})
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				close(disconnected)
				return
			}
		}
	}()

	send := func(reading clockstate.Reading) bool {
		ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := ws.WriteJSON(readingMessage(reading)); err != nil {
			log.WithField("error", err).Debug("websocket write failed")
			return false
		}
		return true
	}

	if face := s.engine.Face(); face != nil {
		date, tod := face.State().Snapshot()
		if !send(clockstate.Reading{Date: date, Time: tod}) {
			return
		}
	}
	for {
		select {
		case <-disconnected:
			log.Debug("websocket disconnected")
			return
		case <-r.Context().Done():
			return
		case reading := <-readings:
			if !send(reading) {
				return
			}
		}
	}
}

func applyFrameFilters(r *http.Request, resp *FrameTimeline) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filtered := make([]FrameSample, 0, len(resp.Samples))
		for _, sample := range resp.Samples {
			if sample.FrameMs >= v {
				filtered = append(filtered, sample)
			}
		}
		resp.Samples = filtered
	}
	if value := r.URL.Query().Get("animating"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil && parsed {
			filtered := make([]FrameSample, 0, len(resp.Samples))
			for _, sample := range resp.Samples {
				if sample.Flags.Animating {
					filtered = append(filtered, sample)
				}
			}
			resp.Samples = filtered
		}
	}

	if limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

// sizeQuery reads the optional ?size= pixel size. It writes a 400 and
// returns false when the value is invalid.
func sizeQuery(w http.ResponseWriter, r *http.Request) (int, bool) {
	value := r.URL.Query().Get("size")
	if value == "" {
		return 0, true
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 || parsed > maxFrameSize {
		http.Error(w, "invalid size", http.StatusBadRequest)
		return 0, false
	}
	return parsed, true
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return 0
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
