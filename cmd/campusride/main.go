// Command campusride serves the student transport API.
//
// Configuration is read from CAMPUSRIDE_* environment variables; see
// internal/app.Config and campusride.Config. CAMPUSRIDE_SESSION_SECRET is
// required.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/campusride/internal/app"
	"github.com/MrEthical07/campusride/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "campusride: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	slog.SetDefault(logger.Slog())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		return err
	}
	logger.Info(ctx, "server stopped")
	return nil
}
