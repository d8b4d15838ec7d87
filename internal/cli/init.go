// Package cli provides the CLI bootstrap and the paybook subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"paybook/internal/backend"
	"paybook/internal/config"
	"paybook/internal/log"
	"paybook/internal/sheets/google"
	"paybook/internal/store"
)

// SetupLogger builds the application logger from the configured level and
// format and installs it as the slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	if cfg != nil {
		lc.Level = log.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore creates the configured backend and opens the record store on it.
// The returned cleanup releases the backend.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*store.Store, backend.CleanupFunc, error) {
	rates, err := cfg.Rates()
	if err != nil {
		return nil, nil, err
	}
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, nil, err
	}

	opts := []store.Option{
		store.WithLogger(logger),
		store.WithDefaultRates(rates),
	}
	if res.Notifier != nil {
		opts = append(opts, store.WithNotifier(res.Notifier))
	}
	s, err := store.Open(ctx, res.Persister, opts...)
	if err != nil {
		if cerr := res.Cleanup(); cerr != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, cerr)
		}
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return s, res.Cleanup, nil
}

// SheetsOpener returns a lazy Google Sheets constructor, or nil when no
// spreadsheet is configured.
func SheetsOpener(cfg *config.Config) func(ctx context.Context) (SheetsClient, error) {
	if !cfg.SheetsEnabled() {
		return nil
	}
	gc := google.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}
	return func(ctx context.Context) (SheetsClient, error) {
		c, err := google.New(ctx, gc)
		if err != nil {
			return nil, fmt.Errorf("google sheets: %w", err)
		}
		return c, nil
	}
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
