package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sakshamg567/chase/config"
	"github.com/sakshamg567/chase/internal/room"
	"github.com/sakshamg567/chase/internal/server"
	"github.com/sakshamg567/chase/logger"
)

func main() {
	cfg := config.Load()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("%v, keeping default level", err)
	}

	rm := room.NewRoomManager(room.Options{})
	app := server.New(cfg, rm)

	go func() {
		logger.Info("Server %s", cfg.Addr())
		if err := app.Listen(cfg.Addr()); err != nil {
			logger.Error("listen: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("shutdown: %v", err)
	}
	rm.Shutdown()
}
