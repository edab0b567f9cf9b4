package usecases

import (
	"context"

	"github.com/sophialabs/stubwire/internal/domain/endpoint"
	"github.com/sophialabs/stubwire/internal/infrastructure/ports"
	"github.com/sophialabs/stubwire/internal/infrastructure/services"
)

// DeleteEndpointUseCase removes a definition from the registry.
type DeleteEndpointUseCase struct {
	registry *services.EndpointRegistry
	logger   ports.Logger
}

// NewDeleteEndpointUseCase creates a new use case.
func NewDeleteEndpointUseCase(registry *services.EndpointRegistry, logger ports.Logger) *DeleteEndpointUseCase {
	return &DeleteEndpointUseCase{
		registry: registry,
		logger:   logger,
	}
}

// Execute removes the definition for (method, pathPattern).
// Returns endpoint.ErrNotFound if no such definition is registered.
func (uc *DeleteEndpointUseCase) Execute(_ context.Context, method, pathPattern string) error {
	identity := endpoint.Identity(method, pathPattern)
	if !uc.registry.Delete(identity) {
		return endpoint.ErrNotFound
	}
	uc.logger.Info("endpoint deleted", "identity", identity)
	return nil
}
