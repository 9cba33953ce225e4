package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creasty/defaults"
	"github.com/gorilla/mux"

	"github.com/zeusync/robosim/internal/core/events/bus"
	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/core/world"
)

// Server hosts one world over HTTP and websocket. It owns the world: every
// update, draw and command goes through it under a single lock.
type Server struct {
	world    *world.World
	mu       sync.Mutex
	events   bus.EventBus
	subs     []bus.Subscription
	observer *eventObserver

	router   *mux.Router
	http     *http.Server
	listener net.Listener

	sessions     sync.Map // map[string]*session
	sessionCount int64    // atomic

	running int32 // atomic bool
	closed  int32 // atomic bool

	config Config
	logger log.Log

	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// Config holds server configuration
type Config struct {
	ListenAddr string `yaml:"listenAddr" default:"127.0.0.1:8080"`

	// DT is the simulation time one step advances.
	DT float64 `yaml:"dt" default:"0.05"`
	// TickInterval is the wall-clock period between automatic steps.
	TickInterval time.Duration `yaml:"tickInterval" default:"50ms"`
	// Paused disables automatic stepping; POST /step still advances.
	Paused bool `yaml:"paused"`

	MaxSessions  int           `yaml:"maxSessions" default:"64"`
	SendBuffer   int           `yaml:"sendBuffer" default:"16"`
	WriteTimeout time.Duration `yaml:"writeTimeout" default:"5s"`

	// CameraScale is the default pixel block size of camera PNGs.
	CameraScale int `yaml:"cameraScale" default:"2"`

	// SlowEvent logs bus deliveries that take longer.
	SlowEvent time.Duration `yaml:"slowEvent" default:"20ms"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

func (c *Config) Validate() error {
	switch {
	case c.DT <= 0:
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.DT)
	case c.TickInterval <= 0:
		return fmt.Errorf("%w: tick interval must be positive, got %v", ErrInvalidConfig, c.TickInterval)
	case c.MaxSessions < 1:
		return fmt.Errorf("%w: max sessions must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// NewServer wraps w. events must be the bus w publishes to; the server
// subscribes to tick and stall events to push them to websocket sessions.
func NewServer(config Config, w *world.World, events bus.EventBus, logger log.Log) (*Server, error) {
	if err := defaults.Set(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if w == nil || events == nil {
		return nil, fmt.Errorf("%w: world and event bus are required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		world:    w,
		events:   events,
		config:   config,
		logger:   logger.With(log.String("component", "server")),
		stopChan: make(chan struct{}),
	}
	s.router = s.routes()
	s.observer = &eventObserver{logger: s.logger, slow: config.SlowEvent}
	events.AddObserver(s.observer)

	for _, typ := range []string{bus.EventTick, bus.EventRobotStalled, bus.EventRobotFreed} {
		sub, err := events.SubscribeTopic(bus.TopicSimulation, typ, s.onEvent)
		if err != nil {
			s.unsubscribe()
			return nil, err
		}
		s.subs = append(s.subs, sub)
	}

	s.logger.Info("Server created",
		log.String("listen_addr", config.ListenAddr),
		log.Float64("dt", config.DT),
		log.Bool("paused", config.Paused))

	return s, nil
}

// Handler returns the HTTP handler serving every route, including /ws.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the bound listen address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.ListenAddr
	}
	return s.listener.Addr().String()
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}

	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	s.listener = listener
	s.stopChan = make(chan struct{})
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.workerGroup.Add(1)
	go func() {
		defer s.workerGroup.Done()
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()

	if !s.config.Paused {
		stop := s.stopChan
		s.workerGroup.Add(1)
		go func() {
			defer s.workerGroup.Done()
			s.stepLoop(stop)
		}()
	}

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))

	return nil
}

// Stop disconnects every session and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")

	close(s.stopChan)
	s.closeSessions()

	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.workerGroup.Wait()

	s.logger.Info("Server stopped")

	return err
}

// Close stops the server if needed and drops its event subscriptions.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}

	if atomic.LoadInt32(&s.running) == 1 {
		_ = s.Stop(context.Background())
	}
	s.closeSessions()
	s.unsubscribe()

	s.logger.Info("Server closed")

	return nil
}

func (s *Server) unsubscribe() {
	for _, sub := range s.subs {
		_ = s.events.Unsubscribe(sub)
	}
	s.subs = nil
	s.events.RemoveObserver(s.observer)
}

func (s *Server) stepLoop(stop <-chan struct{}) {
	s.logger.Debug("Step loop started")

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Step()
		case <-stop:
			s.logger.Debug("Step loop stopped")
			return
		}
	}
}

// Step advances the world by one dt and returns the resulting state.
func (s *Server) Step() world.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.Update(s.world.Time() + s.config.DT)
	return s.world.State()
}

// State returns a snapshot of the world.
func (s *Server) State() world.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.State()
}

// Command is a robot control request.
type Command struct {
	Robot  string  `json:"robot"`
	Action string  `json:"action"`
	Value  float64 `json:"value,omitempty"`
}

// Command actions.
const (
	ActionForward  = "forward"
	ActionBackward = "backward"
	ActionTurn     = "turn"
	ActionStop     = "stop"
)

// Apply runs cmd against the named robot. The new velocities take effect on
// the next step.
func (s *Server) Apply(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.world.Robot(cmd.Robot)
	if !ok {
		return fmt.Errorf("%w: %q", ErrRobotNotFound, cmd.Robot)
	}

	switch cmd.Action {
	case ActionForward:
		r.Forward(cmd.Value)
	case ActionBackward:
		r.Backward(cmd.Value)
	case ActionTurn:
		r.Turn(cmd.Value)
	case ActionStop:
		r.Stop()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}

	err := s.events.PublishToTopic(bus.TopicSimulation,
		bus.NewEvent(bus.EventRobotCommand, "server", cmd, map[string]any{"robot": cmd.Robot}))
	if err != nil {
		s.logger.Warn("command handler failed", log.String("robot", cmd.Robot), log.Error(err))
	}
	return nil
}

// onEvent runs inside World.Update, so s.mu is already held by Step.
func (s *Server) onEvent(e bus.Event) error {
	var msg Message
	switch e.Type() {
	case bus.EventTick:
		st := s.world.State()
		msg = Message{Type: MessageState, State: &st}
	default:
		data, _ := e.Data().(bus.RobotData)
		msg = Message{Type: MessageEvent, Event: e.Type(), Robot: data.Name}
	}
	s.broadcast(msg)
	return nil
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	s.mu.Lock()
	ticks := s.world.Ticks()
	s.mu.Unlock()
	return Stats{
		Sessions: atomic.LoadInt64(&s.sessionCount),
		Ticks:    ticks,
		Running:  atomic.LoadInt32(&s.running) == 1,
		Events:   s.events.GetMetrics(),
	}
}

// Stats contains server statistics
type Stats struct {
	Sessions int64               `json:"sessions"`
	Ticks    uint64              `json:"ticks"`
	Running  bool                `json:"running"`
	Events   bus.EventBusMetrics `json:"events"`
}
