package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockmonitor/internal/config"
	"github.com/mamadbah2/stockmonitor/internal/repository/mongodb"
	"github.com/mamadbah2/stockmonitor/internal/repository/sheets"
	"github.com/mamadbah2/stockmonitor/internal/repository/static"
	"github.com/mamadbah2/stockmonitor/internal/service/reporting"
	"github.com/mamadbah2/stockmonitor/pkg/logger"
)

// App holds the services shared by the server and the CLI.
type App struct {
	Reporting *reporting.Service
	closers   []func(context.Context) error
}

// New wires the inventory source selected by cfg and, when configured, the
// alert export sheet and MongoDB run history.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	a := &App{}
	var opts []reporting.Option

	var source reporting.InventorySource
	switch cfg.Monitor.Source {
	case config.SourceSheets:
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(log, "repo.sheets"))
		if err != nil {
			return nil, fmt.Errorf("init sheets repository: %w", err)
		}
		sheet := sheets.NewInventorySheet(repo, cfg.Sheets.InventoryRange, cfg.Sheets.AlertsRange, logger.Named(log, "repo.inventory"))
		source = sheet
		if cfg.Sheets.AlertsRange != "" {
			opts = append(opts, reporting.WithExporter(sheet))
		}
	default:
		source = static.NewSource(nil)
	}

	if cfg.MongoDB.Enabled() {
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("init mongodb repository: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		opts = append(opts, reporting.WithHistory(repo))
		log.Info("run history enabled", zap.String("db", cfg.MongoDB.DBName), zap.String("collection", cfg.MongoDB.Collection))
	}

	a.Reporting = reporting.NewService(source, logger.Named(log, "svc.reporting"), opts...)
	log.Info("inventory source ready", zap.String("source", source.Name()))

	return a, nil
}

// Close releases external connections.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
