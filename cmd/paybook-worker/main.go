package main

import (
	"context"
	"errors"
	"os"
	"time"

	"paybook/internal/amqp"
	"paybook/internal/backend"
	"paybook/internal/cli"
	"paybook/internal/log"
	ports "paybook/internal/sheets"
	gsheet "paybook/internal/sheets/google"
	"paybook/internal/sheets/xlsx"
	"paybook/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)
	logger.Info("Starting paybook-worker")

	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Error("The memory backend is private to one process; use file or sqlite")
		os.Exit(1)
	}

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	var targets []ports.RecordExporter
	if cfg.SheetsEnabled() {
		sheetsClient, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		targets = append(targets, sheetsClient)
	}
	if cfg.MirrorXLSXPath != "" {
		targets = append(targets, xlsx.NewExporter(cfg.MirrorXLSXPath))
		logger.Info("Workbook mirror enabled", log.FieldPath, cfg.MirrorXLSXPath)
	}
	if len(targets) == 0 {
		logger.Error("No mirror configured; set GOOGLE_SPREADSHEET_ID or MIRROR_XLSX_PATH")
		os.Exit(1)
	}

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	// The worker only reads; events are consumed below, not published.
	bc.AMQPURL = ""
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err)
		os.Exit(1)
	}
	defer res.Cleanup()

	mirror := worker.NewMirrorWorker(res.Persister, logger, targets...)
	if err := mirror.StartupMirror(ctx); err != nil {
		// Keep running; the next event or tick retries.
		logger.Error("Startup mirror failed", log.FieldError, err)
	}

	if cfg.AMQPURL != "" {
		consumer := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		defer consumer.Close()
		go func() {
			if err := consumer.ConsumeRecordEvents(ctx, mirror.HandleRecordEvent); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("Message consumption failed", log.FieldError, err)
				}
				cancel()
			}
		}()
	} else {
		logger.Info("AMQP disabled, mirroring on the interval only")
	}

	interval, _ := cfg.MirrorEvery()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker shutdown complete")
			return
		case <-ticker.C:
			if err := mirror.Mirror(ctx); err != nil {
				logger.Error("Periodic mirror failed", log.FieldError, err)
			}
		}
	}
}
