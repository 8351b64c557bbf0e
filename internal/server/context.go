package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/calmux/calmux/internal/availability"
	"github.com/calmux/calmux/internal/conflict"
	"github.com/calmux/calmux/internal/instrumentation"
	"github.com/calmux/calmux/internal/logging"
	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/orchestrator"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/syncer"
)

// ServerContext holds the MCP server's shared dependencies. Everything is
// injected at construction so tool handlers never reach for globals.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	registry     *provider.Registry
	orchestrator *orchestrator.Orchestrator
	availability *availability.Engine
	conflicts    *conflict.Detector
	syncer       *syncer.Synchronizer

	workingHours availability.WorkingHours
	metrics      *instrumentation.Metrics
	logger       *slog.Logger

	mu       sync.RWMutex
	shutdown bool
}

// Options configures a ServerContext.
type Options struct {
	Registry     *provider.Registry
	WorkingHours availability.WorkingHours
	Metrics      *instrumentation.Metrics
	Logger       *slog.Logger
}

// NewServerContext wires the engines around the provider registry.
func NewServerContext(ctx context.Context, opts Options) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	orch := orchestrator.New(opts.Registry, logger, metrics)

	return &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		registry:     opts.Registry,
		orchestrator: orch,
		availability: availability.NewEngine(orch, logger),
		conflicts:    conflict.NewDetector(orch, logger),
		syncer:       syncer.New(opts.Registry, logger),
		workingHours: opts.WorkingHours,
		metrics:      metrics,
		logger:       logger,
	}
}

func (sc *ServerContext) Context() context.Context { return sc.ctx }

func (sc *ServerContext) Registry() *provider.Registry { return sc.registry }

func (sc *ServerContext) Orchestrator() *orchestrator.Orchestrator { return sc.orchestrator }

func (sc *ServerContext) Availability() *availability.Engine { return sc.availability }

func (sc *ServerContext) Conflicts() *conflict.Detector { return sc.conflicts }

func (sc *ServerContext) Syncer() *syncer.Synchronizer { return sc.syncer }

func (sc *ServerContext) WorkingHours() availability.WorkingHours { return sc.workingHours }

func (sc *ServerContext) Metrics() *instrumentation.Metrics { return sc.metrics }

func (sc *ServerContext) Logger() *slog.Logger { return sc.logger }

// ConnectAll connects every registered provider. Failures are logged and
// reported per provider; already-connected providers are skipped.
func (sc *ServerContext) ConnectAll(ctx context.Context) map[model.ProviderType]error {
	errs := make(map[model.ProviderType]error)
	for _, typ := range sc.registry.Types() {
		p, err := sc.registry.Get(typ)
		if err != nil {
			errs[typ] = err
			continue
		}
		if p.IsConnected() {
			continue
		}
		if err := p.Connect(ctx); err != nil {
			sc.logger.Warn("provider connect failed", logging.Provider(typ), logging.Err(err))
			errs[typ] = err
		}
	}
	return errs
}

// Shutdown disconnects providers and cancels the server context. Safe to
// call more than once.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return
	}
	sc.shutdown = true
	sc.mu.Unlock()

	for _, typ := range sc.registry.Types() {
		p, err := sc.registry.Get(typ)
		if err != nil || !p.IsConnected() {
			continue
		}
		if err := p.Disconnect(context.Background()); err != nil {
			sc.logger.Warn("provider disconnect failed", logging.Provider(typ), logging.Err(err))
		}
	}
	sc.cancel()
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}
