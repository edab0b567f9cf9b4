package wiring

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sophialabs/stubwire/internal/domain/match"
	"github.com/sophialabs/stubwire/internal/domain/trace"
	inboundhttp "github.com/sophialabs/stubwire/internal/infrastructure/inbound/http"
	"github.com/sophialabs/stubwire/internal/infrastructure/outbound/clock"
	"github.com/sophialabs/stubwire/internal/infrastructure/outbound/condition"
	"github.com/sophialabs/stubwire/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/stubwire/internal/infrastructure/outbound/ratelimit"
	"github.com/sophialabs/stubwire/internal/infrastructure/outbound/template"
	"github.com/sophialabs/stubwire/internal/infrastructure/ports"
	"github.com/sophialabs/stubwire/internal/infrastructure/services"
	"github.com/sophialabs/stubwire/internal/infrastructure/usecases"
)

// Params holds the subset of configuration needed to construct
// infrastructure components.
type Params struct {
	SeedDir        string // empty means no seeds
	PathPrefix     string
	TraceSize      int
	RateLimiterTTL time.Duration
	Logger         ports.Logger
	DefaultEngine  string // empty means the placeholder engine
}

// Container owns the construction and lifecycle of all infrastructure
// components.
type Container struct {
	logger           ports.Logger
	server           *inboundhttp.Server
	registry         *services.EndpointRegistry
	loadUC           *usecases.LoadEndpointsUseCase
	rateLimiterStore *ratelimit.TokenBucketStore
	traceBuf         *trace.RingBuffer
	closeOnce        sync.Once
}

// New constructs all infrastructure components. Fallible operations
// (repository) run before goroutine-starting operations (rate limiter store)
// to avoid goroutine leaks on early failure.
func New(p Params) (*Container, error) {
	var repo *filesystem.SeedFileRepository
	if p.SeedDir != "" {
		if _, err := os.Stat(p.SeedDir); err != nil {
			return nil, fmt.Errorf("failed to access seed directory: %w", err)
		}
		r, err := filesystem.NewSeedFileRepository(p.SeedDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create seed repository: %w", err)
		}
		repo = r
	}

	templates := template.NewRegistry()
	conditions := condition.NewCompiler()
	compiler := services.NewCompiler(templates, conditions, p.Logger)
	if p.DefaultEngine != "" {
		compiler.SetDefaultEngine(p.DefaultEngine)
	}

	// Start background goroutine only after all fallible ops succeed.
	rateLimiterStore := ratelimit.NewTokenBucketStore(p.RateLimiterTTL)

	clk := clock.New()
	traceBuf := trace.NewRingBuffer(p.TraceSize)
	registry := services.NewEndpointRegistry()
	selector := match.NewSelector()

	dispatchUC := usecases.NewDispatchUseCase(registry, selector, clk, rateLimiterStore, p.Logger, traceBuf)
	if p.PathPrefix != "" {
		dispatchUC.SetPathPrefix(p.PathPrefix)
	}
	upsertUC := usecases.NewUpsertEndpointUseCase(compiler, registry, p.Logger)
	deleteUC := usecases.NewDeleteEndpointUseCase(registry, p.Logger)

	var loadUC *usecases.LoadEndpointsUseCase
	if repo != nil {
		loadUC = usecases.NewLoadEndpointsUseCase(repo, compiler, registry, p.Logger)
	}

	server := inboundhttp.NewServer(dispatchUC, upsertUC, deleteUC, loadUC, registry, traceBuf, p.Logger)

	return &Container{
		logger:           p.Logger,
		server:           server,
		registry:         registry,
		loadUC:           loadUC,
		rateLimiterStore: rateLimiterStore,
		traceBuf:         traceBuf,
	}, nil
}

// Close releases resources held by the container. It is idempotent.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		c.rateLimiterStore.Stop()
	})
}

// Logger returns the logger passed at construction time.
func (c *Container) Logger() ports.Logger {
	return c.logger
}

// Server returns the HTTP mock server.
func (c *Container) Server() *inboundhttp.Server {
	return c.server
}

// Registry returns the endpoint registry.
func (c *Container) Registry() *services.EndpointRegistry {
	return c.registry
}

// LoadEndpointsUseCase returns the seed loading use case; nil when no seed
// directory is configured.
func (c *Container) LoadEndpointsUseCase() *usecases.LoadEndpointsUseCase {
	return c.loadUC
}

// TraceBuf returns the dispatch trace ring buffer.
func (c *Container) TraceBuf() *trace.RingBuffer {
	return c.traceBuf
}
