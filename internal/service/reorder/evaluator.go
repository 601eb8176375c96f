package reorder

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
)

// ErrInvalidInput indicates an inventory item failed validation. Evaluate wraps
// it with the offending field.
var ErrInvalidInput = errors.New("invalid inventory item")

// Evaluate derives the reorder thresholds and severity of a single item.
//
//	safety_stock      = floor(usage × lead_time × safety_factor)
//	reorder_point     = safety_stock + floor(usage × lead_time)
//	recommended_order = max(0, max_stock − current_stock + safety_stock)
//
// Cost and stockout days round half to even.
//
// Severity is decided in order: zero stock is an emergency, stock at or below
// safety stock is critical, at or below the reorder point is a warning.
func Evaluate(item models.InventoryItem) (models.StockAlert, error) {
	if err := Validate(item); err != nil {
		return models.StockAlert{}, err
	}

	leadTimeDemand := item.AvgDailyUsage * float64(item.LeadTimeDays)
	safetyStock := int(math.Floor(leadTimeDemand * item.SafetyFactor))
	reorderPoint := safetyStock + int(math.Floor(leadTimeDemand))
	recommended := max(0, item.MaxStock-item.CurrentStock+safetyStock)

	cost := decimal.NewFromInt(int64(recommended)).
		Mul(decimal.NewFromFloat(item.UnitCost)).
		RoundBank(2)

	return models.StockAlert{
		SKU:               item.SKU,
		Name:              item.Name,
		Category:          item.Category,
		Supplier:          item.Supplier,
		CurrentStock:      item.CurrentStock,
		AvgDailyUsage:     item.AvgDailyUsage,
		LeadTimeDays:      item.LeadTimeDays,
		SafetyStock:       safetyStock,
		ReorderPoint:      reorderPoint,
		RecommendedOrder:  recommended,
		EstimatedCost:     cost.InexactFloat64(),
		DaysUntilStockout: daysUntilStockout(item.CurrentStock, item.AvgDailyUsage),
		Severity:          classify(item.CurrentStock, safetyStock, reorderPoint),
	}, nil
}

// EvaluateAll evaluates items in order. Invalid items do not stop the batch;
// they are reported in Failures while the rest still produce alerts.
func EvaluateAll(items []models.InventoryItem) models.Evaluation {
	result := models.Evaluation{
		Alerts:   make([]models.StockAlert, 0, len(items)),
		Failures: []models.ItemError{},
	}

	for i, item := range items {
		alert, err := Evaluate(item)
		if err != nil {
			result.Failures = append(result.Failures, models.ItemError{SKU: item.SKU, Index: i, Reason: err.Error()})
			continue
		}
		result.Alerts = append(result.Alerts, alert)
	}

	return result
}

// TotalReorderCost sums the estimated cost of every actionable alert. Items
// classified ok are excluded.
func TotalReorderCost(alerts []models.StockAlert) decimal.Decimal {
	total := decimal.Zero
	for _, a := range alerts {
		if !a.Severity.Actionable() {
			continue
		}
		total = total.Add(decimal.NewFromFloat(a.EstimatedCost))
	}
	return total.Round(2)
}

// Validate checks the numeric constraints of an item.
func Validate(item models.InventoryItem) error {
	switch {
	case item.SKU == "":
		return fmt.Errorf("%w: sku must not be empty", ErrInvalidInput)
	case item.CurrentStock < 0:
		return fmt.Errorf("%w: current_stock must be >= 0, got %d", ErrInvalidInput, item.CurrentStock)
	case !(item.AvgDailyUsage >= 0) || math.IsInf(item.AvgDailyUsage, 0):
		return fmt.Errorf("%w: avg_daily_usage must be a finite value >= 0, got %v", ErrInvalidInput, item.AvgDailyUsage)
	case item.LeadTimeDays < 0:
		return fmt.Errorf("%w: lead_time_days must be >= 0, got %d", ErrInvalidInput, item.LeadTimeDays)
	case !(item.SafetyFactor > 0) || math.IsInf(item.SafetyFactor, 0):
		return fmt.Errorf("%w: safety_factor must be a finite value > 0, got %v", ErrInvalidInput, item.SafetyFactor)
	case item.MaxStock <= 0:
		return fmt.Errorf("%w: max_stock must be > 0, got %d", ErrInvalidInput, item.MaxStock)
	case !(item.UnitCost > 0) || math.IsInf(item.UnitCost, 0):
		return fmt.Errorf("%w: unit_cost must be a finite value > 0, got %v", ErrInvalidInput, item.UnitCost)
	}
	return nil
}

func classify(stock, safetyStock, reorderPoint int) models.Severity {
	switch {
	case stock == 0:
		return models.SeverityEmergency
	case stock <= safetyStock:
		return models.SeverityCritical
	case stock <= reorderPoint:
		return models.SeverityWarning
	default:
		return models.SeverityOK
	}
}

func daysUntilStockout(stock int, usage float64) models.StockoutDays {
	if usage <= 0 {
		return models.StockoutDays(math.Inf(1))
	}
	return models.StockoutDays(math.RoundToEven(float64(stock)/usage*10) / 10)
}
