// Package container provides a dependency injection container for the application.
package container

import (
	"governd/internal/app"
	"governd/internal/config"
	"governd/internal/db"
	"governd/internal/encryption"
	"governd/internal/handler"
	"governd/internal/httpclient"
	"governd/internal/router"
	"governd/internal/services"
	"governd/internal/store"
	"governd/internal/suborg"
	"governd/internal/upstream"

	"go.uber.org/dig"
)

// BuildContainer creates a new dependency injection container and provides all the application's services.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Infrastructure Services
	if err := container.Provide(config.NewManager); err != nil {
		return nil, err
	}
	if err := container.Provide(db.NewDB); err != nil {
		return nil, err
	}
	if err := container.Provide(config.NewSystemSettingsManager); err != nil {
		return nil, err
	}
	if err := container.Provide(store.NewStore); err != nil {
		return nil, err
	}
	if err := container.Provide(httpclient.NewHTTPClientManager); err != nil {
		return nil, err
	}
	if err := container.Provide(encryption.NewService); err != nil {
		return nil, err
	}
	if err := container.Provide(suborg.NewTableFromManager); err != nil {
		return nil, err
	}
	if err := container.Provide(upstream.NewClient); err != nil {
		return nil, err
	}

	// Business Services
	if err := container.Provide(services.NewGovernanceService); err != nil {
		return nil, err
	}
	if err := container.Provide(services.NewAuditService); err != nil {
		return nil, err
	}
	if err := container.Provide(services.NewAuditCleanupService); err != nil {
		return nil, err
	}

	// Handlers & Router
	if err := container.Provide(handler.NewServer); err != nil {
		return nil, err
	}
	if err := container.Provide(router.NewRouter); err != nil {
		return nil, err
	}

	// Application Layer
	if err := container.Provide(app.NewApp); err != nil {
		return nil, err
	}

	return container, nil
}
