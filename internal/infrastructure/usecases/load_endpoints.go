package usecases

import (
	"context"
	"fmt"

	"github.com/sophialabs/stubwire/internal/domain/endpoint"
	"github.com/sophialabs/stubwire/internal/domain/match"
	"github.com/sophialabs/stubwire/internal/infrastructure/ports"
	"github.com/sophialabs/stubwire/internal/infrastructure/services"
)

// LoadEndpointsUseCase loads seed definitions, compiles them and replaces
// the registry content wholesale. Used at startup, on hot reload and via the
// admin reload operation.
type LoadEndpointsUseCase struct {
	repo     endpoint.SeedRepository
	compiler *services.Compiler
	registry *services.EndpointRegistry
	logger   ports.Logger
}

// NewLoadEndpointsUseCase creates a new use case.
func NewLoadEndpointsUseCase(
	repo endpoint.SeedRepository,
	compiler *services.Compiler,
	registry *services.EndpointRegistry,
	logger ports.Logger,
) *LoadEndpointsUseCase {
	return &LoadEndpointsUseCase{
		repo:     repo,
		compiler: compiler,
		registry: registry,
		logger:   logger,
	}
}

// Execute loads, compiles and installs the seed set. Definitions that fail
// to compile are skipped with a warning; they do not block the rest.
func (uc *LoadEndpointsUseCase) Execute(ctx context.Context) error {
	defs, err := uc.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load endpoint seeds: %w", err)
	}

	uc.logger.Info("loaded endpoint seeds", "count", len(defs))

	compiled := make([]*match.CompiledEndpoint, 0, len(defs))
	var failures int
	for _, def := range defs {
		ce, err := uc.compiler.CompileDefinition(def)
		if err != nil {
			failures++
			uc.logger.Warn("failed to compile endpoint definition", "identity", def.Identity(), "error", err)
			continue
		}
		compiled = append(compiled, ce)
		uc.logger.Debug("compiled endpoint definition", "identity", ce.Identity, "scenarios", len(ce.Scenarios))
	}

	if failures > 0 {
		uc.logger.Warn("some endpoint definitions failed to compile", "failures", failures)
	}

	uc.registry.Replace(compiled)
	uc.logger.Info("endpoint registry replaced", "endpoints", uc.registry.Len())
	return nil
}
