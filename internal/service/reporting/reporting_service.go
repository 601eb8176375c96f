package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
	"github.com/mamadbah2/stockmonitor/internal/service/reorder"
)

// ErrHistoryDisabled is returned by history lookups when no run store is wired.
var ErrHistoryDisabled = errors.New("run history is disabled")

// ErrUnknownSKU indicates a lookup for an item the source does not carry.
var ErrUnknownSKU = errors.New("unknown sku")

// InventorySource supplies a snapshot of inventory items. Rows the source could
// not turn into items are returned as failures alongside the items.
type InventorySource interface {
	Name() string
	ListItems(ctx context.Context) ([]models.InventoryItem, []models.ItemError, error)
}

// RunStore persists evaluation runs.
type RunStore interface {
	SaveRun(ctx context.Context, run models.StockRun) error
	LatestRun(ctx context.Context) (models.StockRun, error)
}

// AlertExporter mirrors actionable alerts to an external sheet or feed.
type AlertExporter interface {
	AppendAlerts(ctx context.Context, run models.StockRun) error
}

// RunOptions selects what a stock check covers.
type RunOptions struct {
	Category string
	// Persist stores the run in history and exports its alerts.
	Persist bool
}

// Service runs stock checks against an inventory source.
type Service struct {
	source   InventorySource
	history  RunStore
	exporter AlertExporter
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithHistory wires a run store.
func WithHistory(store RunStore) Option {
	return func(s *Service) { s.history = store }
}

// WithExporter wires an alert exporter.
func WithExporter(exporter AlertExporter) Option {
	return func(s *Service) { s.exporter = exporter }
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a new reporting service instance.
func NewService(source InventorySource, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		source: source,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run takes one snapshot of the inventory, evaluates every item and returns the
// run. Persistence problems are logged; they never fail the check itself.
func (s *Service) Run(ctx context.Context, opts RunOptions) (models.StockRun, error) {
	items, sourceFailures, err := s.source.ListItems(ctx)
	if err != nil {
		return models.StockRun{}, fmt.Errorf("snapshot inventory from %s: %w", s.source.Name(), err)
	}

	items = reorder.FilterByCategory(items, opts.Category)
	evaluation := reorder.EvaluateAll(items)

	failures := make([]models.ItemError, 0, len(sourceFailures)+len(evaluation.Failures))
	failures = append(failures, sourceFailures...)
	for _, f := range evaluation.Failures {
		// EvaluateAll indexes the filtered batch; report the snapshot position instead.
		item := items[f.Index]
		f.Index = item.Position
		f.Row = item.Row
		failures = append(failures, f)
	}
	sort.SliceStable(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })

	run := models.StockRun{
		RunID:            s.newID(),
		Source:           s.source.Name(),
		Category:         opts.Category,
		Alerts:           evaluation.Alerts,
		Failures:         failures,
		Counts:           reorder.CountBySeverity(evaluation.Alerts),
		TotalReorderCost: reorder.TotalReorderCost(evaluation.Alerts).InexactFloat64(),
		CreatedAt:        s.now(),
	}

	s.logger.Info("stock check completed",
		zap.String("run_id", run.RunID),
		zap.String("source", run.Source),
		zap.String("category", opts.Category),
		zap.Int("items", len(run.Alerts)),
		zap.Int("failures", len(run.Failures)),
		zap.Any("counts", run.Counts))

	for _, f := range failures {
		s.logger.Warn("inventory item rejected", zap.String("sku", f.SKU), zap.Int("index", f.Index), zap.String("reason", f.Reason))
	}

	if opts.Persist {
		s.persist(ctx, run)
	}

	return run, nil
}

// Evaluate scores caller-supplied items without touching the source or history.
func (s *Service) Evaluate(items []models.InventoryItem) models.StockRun {
	evaluation := reorder.EvaluateAll(items)
	return models.StockRun{
		RunID:            s.newID(),
		Source:           "request",
		Alerts:           evaluation.Alerts,
		Failures:         evaluation.Failures,
		Counts:           reorder.CountBySeverity(evaluation.Alerts),
		TotalReorderCost: reorder.TotalReorderCost(evaluation.Alerts).InexactFloat64(),
		CreatedAt:        s.now(),
	}
}

// Consumption renders the consumption projection for the current snapshot.
// Items that fail validation are left out.
func (s *Service) Consumption(ctx context.Context, category string, days int) (string, error) {
	if days <= 0 {
		return "", fmt.Errorf("days must be positive, got %d", days)
	}

	items, _, err := s.source.ListItems(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot inventory from %s: %w", s.source.Name(), err)
	}

	valid := make([]models.InventoryItem, 0, len(items))
	for _, item := range reorder.FilterByCategory(items, category) {
		if err := reorder.Validate(item); err != nil {
			s.logger.Warn("item left out of consumption report", zap.String("sku", item.SKU), zap.Error(err))
			continue
		}
		valid = append(valid, item)
	}

	return ConsumptionReport(valid, days), nil
}

// AlertForSKU evaluates a single item of the current snapshot.
func (s *Service) AlertForSKU(ctx context.Context, sku string) (models.StockAlert, error) {
	items, _, err := s.source.ListItems(ctx)
	if err != nil {
		return models.StockAlert{}, fmt.Errorf("snapshot inventory from %s: %w", s.source.Name(), err)
	}

	for _, item := range items {
		if strings.EqualFold(item.SKU, sku) {
			return reorder.Evaluate(item)
		}
	}

	return models.StockAlert{}, fmt.Errorf("%w: %s", ErrUnknownSKU, sku)
}

// LatestRun returns the newest persisted run.
func (s *Service) LatestRun(ctx context.Context) (models.StockRun, error) {
	if s.history == nil {
		return models.StockRun{}, ErrHistoryDisabled
	}
	return s.history.LatestRun(ctx)
}

// Now exposes the service clock so reports rendered elsewhere agree with run timestamps.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) persist(ctx context.Context, run models.StockRun) {
	if s.history != nil {
		if err := s.history.SaveRun(ctx, run); err != nil {
			s.logger.Error("failed to save stock run", zap.String("run_id", run.RunID), zap.Error(err))
		}
	}

	if s.exporter != nil {
		if err := s.exporter.AppendAlerts(ctx, run); err != nil {
			s.logger.Error("failed to export alerts", zap.String("run_id", run.RunID), zap.Error(err))
		}
	}
}
