package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarroquinRiv/jarvis/internal/app"
	"github.com/MarroquinRiv/jarvis/internal/config"
	"github.com/MarroquinRiv/jarvis/internal/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		logger.Fatal("startup failed", err)
	}
	defer application.Close()

	go application.Server.Start()
	logger.Info("jarvis is running")

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", err)
	}
}
