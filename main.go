// Governd is the admin backend for identity governance configuration.
package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"syscall"
	"time"

	"governd/internal/app"
	"governd/internal/commands"
	"governd/internal/container"
	"governd/internal/types"
	"governd/internal/utils"

	"github.com/sirupsen/logrus"
)

//go:embed web/dist
var buildFS embed.FS

//go:embed web/dist/index.html
var indexPage []byte

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate-credential":
			commands.RunMigrateCredential(os.Args[2:])
			return
		}
	}

	runServer()
}

func runServer() {
	cont, err := container.BuildContainer()
	if err != nil {
		logrus.Fatalf("Failed to build container: %v", err)
	}

	if err := cont.Provide(func() embed.FS { return buildFS }); err != nil {
		logrus.Fatalf("Failed to provide build fs: %v", err)
	}
	if err := cont.Provide(func() []byte { return indexPage }); err != nil {
		logrus.Fatalf("Failed to provide index page: %v", err)
	}

	if err := cont.Invoke(func(configManager types.ConfigManager) {
		utils.SetupLogger(configManager)
		configManager.DisplayServerConfig()
	}); err != nil {
		logrus.Fatalf("Failed to setup logger: %v", err)
	}

	var application *app.App
	if err := cont.Invoke(func(a *app.App) {
		application = a
	}); err != nil {
		logrus.Fatalf("Failed to resolve application: %v", err)
	}

	if err := application.Start(); err != nil {
		logrus.Fatalf("Failed to start application: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	application.Stop(ctx)
}
