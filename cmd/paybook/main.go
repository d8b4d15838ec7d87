package main

import (
	"fmt"
	"os"

	"paybook/internal/cli"
	"paybook/internal/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "paybook:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		cli.Usage(os.Stdout)
		return nil
	}

	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg)

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	s, cleanup, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cleanup(); cerr != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, cerr)
		}
	}()

	app := &cli.App{
		Store:  s,
		Out:    os.Stdout,
		In:     os.Stdin,
		Logger: logger,
		Sheets: cli.SheetsOpener(cfg),
	}
	return app.Run(ctx, args)
}
