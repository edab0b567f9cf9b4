package usecases

import (
	"context"
	"fmt"

	"github.com/sophialabs/stubwire/internal/domain/endpoint"
	"github.com/sophialabs/stubwire/internal/infrastructure/ports"
	"github.com/sophialabs/stubwire/internal/infrastructure/services"
)

// UpsertEndpointUseCase validates, compiles and installs one definition.
// Upserting an identity that already exists replaces the previous entry; the
// operation is idempotent, never an append.
type UpsertEndpointUseCase struct {
	compiler *services.Compiler
	registry *services.EndpointRegistry
	logger   ports.Logger
}

// NewUpsertEndpointUseCase creates a new use case.
func NewUpsertEndpointUseCase(compiler *services.Compiler, registry *services.EndpointRegistry, logger ports.Logger) *UpsertEndpointUseCase {
	return &UpsertEndpointUseCase{
		compiler: compiler,
		registry: registry,
		logger:   logger,
	}
}

// Execute compiles the definition and upserts it, returning its identity.
func (uc *UpsertEndpointUseCase) Execute(_ context.Context, def *endpoint.Definition) (string, error) {
	ce, err := uc.compiler.CompileDefinition(def)
	if err != nil {
		return "", fmt.Errorf("failed to compile endpoint definition: %w", err)
	}

	uc.registry.Upsert(ce)
	uc.logger.Info("endpoint upserted", "identity", ce.Identity, "scenarios", len(ce.Scenarios))
	return ce.Identity, nil
}
