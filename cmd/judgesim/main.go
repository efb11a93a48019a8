// Command judgesim serves an in-memory judge backend with the same HTTP
// contract as production, for local use and end-to-end tests of judgectl.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Neeharika2/code-assessor/internal/api"
	"github.com/Neeharika2/code-assessor/internal/common/security"
	"github.com/Neeharika2/code-assessor/internal/platform/config"
	"github.com/Neeharika2/code-assessor/internal/platform/logging"
	"github.com/Neeharika2/code-assessor/internal/simulator"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 2. Initialize JWT
	issuer := security.NewIssuer(cfg.JWTKey, cfg.JWTExp)

	// 3. Initialize simulator services
	executor := simulator.NewPool(simulator.EchoExecutor{}, cfg.SimExecSlots, logger)
	router, svc := api.NewSimulator(issuer, executor, logger)
	if err := svc.Auth.EnsureAdmin(context.Background(), cfg.SimAdminUsername, cfg.SimAdminPassword); err != nil {
		logger.Fatal("seeding admin account failed", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.SimPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 4. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("judge simulator starting", zap.String("port", cfg.SimPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("could not listen", zap.String("port", cfg.SimPort), zap.Error(err))
		}
	}()

	<-stop
	logger.Info("shutting down judge simulator")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("judge simulator stopped")
}
