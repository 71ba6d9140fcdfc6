// Package app wires the HTTP server lifecycle together.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"governd/internal/services"
	"governd/internal/store"
	"governd/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"
	"gorm.io/gorm"
)

// App owns the HTTP server and the background services.
type App struct {
	engine            *gin.Engine
	configManager     types.ConfigManager
	storeInst         store.Store
	db                *gorm.DB
	governanceService *services.GovernanceService
	auditCleanup      *services.AuditCleanupService
	httpServer        *http.Server
}

// AppParams defines the dependencies for the App.
type AppParams struct {
	dig.In
	Engine            *gin.Engine
	ConfigManager     types.ConfigManager
	Store             store.Store
	DB                *gorm.DB
	GovernanceService *services.GovernanceService
	AuditCleanup      *services.AuditCleanupService
}

// NewApp creates a new application instance.
func NewApp(params AppParams) *App {
	return &App{
		engine:            params.Engine,
		configManager:     params.ConfigManager,
		storeInst:         params.Store,
		db:                params.DB,
		governanceService: params.GovernanceService,
		auditCleanup:      params.AuditCleanup,
	}
}

// Start launches the background services and the HTTP server.
func (a *App) Start() error {
	if a.configManager.IsMaster() {
		a.auditCleanup.Start()
	}

	serverConfig := a.configManager.GetEffectiveServerConfig()
	a.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
		Handler:        a.engine,
		ReadTimeout:    time.Duration(serverConfig.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(serverConfig.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(serverConfig.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errChan := make(chan error, 1)
	go func() {
		logrus.Infof("server listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start server: %w", err)
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// Stop gracefully shuts the application down.
func (a *App) Stop(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			logrus.WithError(err).Warn("http server shutdown was not clean")
		}
	}

	if a.configManager.IsMaster() {
		a.auditCleanup.Stop()
	}
	a.governanceService.Stop()

	if err := a.storeInst.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close store")
	}

	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}

	logrus.Info("server stopped")
}
