package sheets

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
)

// SourceName identifies this source in run history.
const SourceName = "sheets"

// Inventory sheet layout, one item per row:
//
//	A sku | B name | C category | D supplier | E current_stock | F avg_daily_usage |
//	G lead_time_days | H safety_factor | I max_stock | J unit_cost
const (
	colSKU = iota
	colName
	colCategory
	colSupplier
	colCurrentStock
	colAvgDailyUsage
	colLeadTimeDays
	colSafetyFactor
	colMaxStock
	colUnitCost
)

const timestampLayout = "2006-01-02 15:04"

// InventorySheet reads inventory items from a sheet and optionally appends
// actionable alerts to a second range.
type InventorySheet struct {
	repo           Repository
	inventoryRange string
	firstRow       int
	alertsRange    string
	logger         *zap.Logger
}

// NewInventorySheet wires the adapter. alertsRange may be empty to disable alert export.
func NewInventorySheet(repo Repository, inventoryRange, alertsRange string, logger *zap.Logger) *InventorySheet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventorySheet{
		repo:           repo,
		inventoryRange: inventoryRange,
		firstRow:       firstRowOf(inventoryRange),
		alertsRange:    alertsRange,
		logger:         logger,
	}
}

// Name implements the inventory source contract.
func (s *InventorySheet) Name() string {
	return SourceName
}

// ListItems reads the whole inventory range once. Rows with missing or malformed
// cells are returned as failures rather than coerced; fully blank rows are skipped.
func (s *InventorySheet) ListItems(ctx context.Context) ([]models.InventoryItem, []models.ItemError, error) {
	rows, err := s.repo.ReadRange(ctx, s.inventoryRange)
	if err != nil {
		return nil, nil, fmt.Errorf("load inventory range: %w", err)
	}

	items := make([]models.InventoryItem, 0, len(rows))
	var failures []models.ItemError

	for i, row := range rows {
		if blankRow(row) {
			continue
		}

		sheetRow := s.firstRow + i
		item, err := parseItemRow(row)
		if err != nil {
			s.logger.Debug("skip inventory row", zap.Int("row", sheetRow), zap.Error(err))
			failures = append(failures, models.ItemError{
				SKU:    strings.TrimSpace(cell(row, colSKU)),
				Index:  i,
				Row:    sheetRow,
				Reason: err.Error(),
			})
			continue
		}
		item.Position = i
		item.Row = sheetRow
		items = append(items, item)
	}

	return items, failures, nil
}

// AppendAlerts writes one row per actionable alert of the run. It is a no-op
// when no alerts range is configured.
func (s *InventorySheet) AppendAlerts(ctx context.Context, run models.StockRun) error {
	if s.alertsRange == "" {
		return nil
	}

	var rows [][]interface{}
	for _, a := range run.Alerts {
		if !a.Severity.Actionable() {
			continue
		}
		rows = append(rows, []interface{}{
			run.CreatedAt.Format(timestampLayout),
			run.RunID,
			a.SKU,
			a.Name,
			a.Severity.String(),
			a.CurrentStock,
			a.ReorderPoint,
			a.RecommendedOrder,
			a.EstimatedCost,
		})
	}

	if err := s.repo.AppendRows(ctx, s.alertsRange, rows); err != nil {
		return fmt.Errorf("export alerts: %w", err)
	}
	return nil
}

func parseItemRow(row []interface{}) (models.InventoryItem, error) {
	var item models.InventoryItem
	var err error

	if item.SKU, err = requiredString(row, colSKU, "sku"); err != nil {
		return item, err
	}
	if item.Name, err = requiredString(row, colName, "name"); err != nil {
		return item, err
	}
	if item.Category, err = requiredString(row, colCategory, "category"); err != nil {
		return item, err
	}
	item.Supplier = strings.TrimSpace(cell(row, colSupplier))

	if item.CurrentStock, err = requiredInt(row, colCurrentStock, "current_stock"); err != nil {
		return item, err
	}
	if item.AvgDailyUsage, err = requiredFloat(row, colAvgDailyUsage, "avg_daily_usage"); err != nil {
		return item, err
	}
	if item.LeadTimeDays, err = requiredInt(row, colLeadTimeDays, "lead_time_days"); err != nil {
		return item, err
	}
	if item.SafetyFactor, err = requiredFloat(row, colSafetyFactor, "safety_factor"); err != nil {
		return item, err
	}
	if item.MaxStock, err = requiredInt(row, colMaxStock, "max_stock"); err != nil {
		return item, err
	}
	if item.UnitCost, err = requiredFloat(row, colUnitCost, "unit_cost"); err != nil {
		return item, err
	}

	return item, nil
}

// firstRowOf returns the sheet row number of the first row of an A1 range such
// as "Inventory!A2:J". Ranges without a start row begin at row 1.
func firstRowOf(a1Range string) int {
	start := a1Range
	if i := strings.LastIndex(start, "!"); i >= 0 {
		start = start[i+1:]
	}
	if i := strings.Index(start, ":"); i >= 0 {
		start = start[:i]
	}
	start = strings.TrimLeft(start, "$ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")
	if n, err := strconv.Atoi(start); err == nil && n > 0 {
		return n
	}
	return 1
}

func cell(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return fmt.Sprint(row[idx])
}

func blankRow(row []interface{}) bool {
	for i := range row {
		if strings.TrimSpace(cell(row, i)) != "" {
			return false
		}
	}
	return true
}

func requiredString(row []interface{}, idx int, field string) (string, error) {
	value := strings.TrimSpace(cell(row, idx))
	if value == "" {
		return "", fmt.Errorf("missing %s", field)
	}
	return value, nil
}

func requiredInt(row []interface{}, idx int, field string) (int, error) {
	if idx < len(row) {
		if f, ok := row[idx].(float64); ok {
			if f != math.Trunc(f) {
				return 0, fmt.Errorf("%s must be a whole number, got %v", field, f)
			}
			return int(f), nil
		}
	}

	value, err := requiredString(row, idx, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number, got %q", field, value)
	}
	return n, nil
}

func requiredFloat(row []interface{}, idx int, field string) (float64, error) {
	if idx < len(row) {
		if f, ok := row[idx].(float64); ok {
			return f, nil
		}
	}

	value, err := requiredString(row, idx, field)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", field, value)
	}
	return f, nil
}
