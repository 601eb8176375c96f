package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mamadbah2/stockmonitor/internal/app"
	"github.com/mamadbah2/stockmonitor/internal/cli"
	"github.com/mamadbah2/stockmonitor/internal/config"
	"github.com/mamadbah2/stockmonitor/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := cli.NewRootCmd(open).ExecuteContext(ctx)
	var exitErr *cli.ExitError
	switch {
	case errors.As(err, &exitErr):
		os.Exit(exitErr.Code)
	case err != nil:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func open(ctx context.Context) (cli.Reporter, func(), error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return nil, nil, err
	}

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}

	release := func() {
		_ = application.Close(context.Background())
		_ = log.Sync()
	}
	return application.Reporting, release, nil
}
