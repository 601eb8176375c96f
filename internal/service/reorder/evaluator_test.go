package reorder

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
)

func item(sku string, stock int, usage float64, lead int, factor float64, maxStock int, cost float64) models.InventoryItem {
	return models.InventoryItem{
		SKU:           sku,
		Name:          sku + " name",
		Category:      "filament",
		CurrentStock:  stock,
		AvgDailyUsage: usage,
		LeadTimeDays:  lead,
		SafetyFactor:  factor,
		MaxStock:      maxStock,
		UnitCost:      cost,
	}
}

func TestEvaluate_CriticalBelowSafetyStock(t *testing.T) {
	alert, err := Evaluate(item("FIL-PLA-WHT", 12, 8, 5, 1.5, 200, 18.00))
	require.NoError(t, err)

	assert.Equal(t, 60, alert.SafetyStock)
	assert.Equal(t, 100, alert.ReorderPoint)
	assert.Equal(t, 248, alert.RecommendedOrder)
	assert.Equal(t, 4464.00, alert.EstimatedCost)
	assert.Equal(t, models.StockoutDays(1.5), alert.DaysUntilStockout)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
}

func TestEvaluate_WarningBetweenThresholds(t *testing.T) {
	alert, err := Evaluate(item("FIL-PLA-BLK", 95, 10, 5, 1.5, 200, 18.00))
	require.NoError(t, err)

	assert.Equal(t, 75, alert.SafetyStock)
	assert.Equal(t, 125, alert.ReorderPoint)
	assert.Equal(t, 180, alert.RecommendedOrder)
	assert.Equal(t, 3240.00, alert.EstimatedCost)
	assert.Equal(t, models.StockoutDays(9.5), alert.DaysUntilStockout)
	assert.Equal(t, models.SeverityWarning, alert.Severity)
}

func TestEvaluate_FractionalThresholdsAreFloored(t *testing.T) {
	alert, err := Evaluate(item("ACC-NZL-04", 52, 4, 3, 1.2, 500, 1.50))
	require.NoError(t, err)

	assert.Equal(t, 14, alert.SafetyStock)
	assert.Equal(t, 26, alert.ReorderPoint)
	assert.Equal(t, 462, alert.RecommendedOrder)
	assert.Equal(t, 693.00, alert.EstimatedCost)
	assert.Equal(t, models.SeverityOK, alert.Severity)
}

func TestEvaluate_ZeroStockIsAlwaysEmergency(t *testing.T) {
	cases := []models.InventoryItem{
		item("A", 0, 8, 5, 1.5, 200, 18),
		item("B", 0, 0, 0, 1, 1, 1),
		item("C", 0, 100, 30, 3, 10, 5),
		item("D", 0, 0.5, 1, 0.1, 500, 0.01),
	}

	for _, c := range cases {
		alert, err := Evaluate(c)
		require.NoError(t, err)
		assert.Equal(t, models.SeverityEmergency, alert.Severity, c.SKU)
	}
}

func TestEvaluate_RecommendedOrderNeverNegative(t *testing.T) {
	alert, err := Evaluate(item("OVER", 900, 1, 2, 1.5, 100, 4))
	require.NoError(t, err)

	assert.Equal(t, 0, alert.RecommendedOrder)
	assert.Equal(t, 0.0, alert.EstimatedCost)
	assert.Equal(t, models.SeverityOK, alert.Severity)
}

func TestEvaluate_ZeroUsage(t *testing.T) {
	t.Run("stock on hand is ok with infinite horizon", func(t *testing.T) {
		alert, err := Evaluate(item("IDLE", 5, 0, 7, 1.5, 50, 10))
		require.NoError(t, err)

		assert.Equal(t, 0, alert.SafetyStock)
		assert.Equal(t, 0, alert.ReorderPoint)
		assert.True(t, alert.DaysUntilStockout.Infinite())
		assert.True(t, math.IsInf(float64(alert.DaysUntilStockout), 1))
		assert.Equal(t, models.SeverityOK, alert.Severity)
	})

	t.Run("empty shelf is still an emergency", func(t *testing.T) {
		alert, err := Evaluate(item("IDLE", 0, 0, 7, 1.5, 50, 10))
		require.NoError(t, err)

		assert.True(t, alert.DaysUntilStockout.Infinite())
		assert.Equal(t, models.SeverityEmergency, alert.Severity)
		assert.Equal(t, 50, alert.RecommendedOrder)
	})

	t.Run("zero lead time drops thresholds to zero too", func(t *testing.T) {
		alert, err := Evaluate(item("LOCAL", 1, 4, 0, 1.5, 50, 10))
		require.NoError(t, err)

		assert.Equal(t, 0, alert.SafetyStock)
		assert.Equal(t, 0, alert.ReorderPoint)
		assert.Equal(t, models.StockoutDays(0.2), alert.DaysUntilStockout)
		assert.Equal(t, models.SeverityOK, alert.Severity)
	})
}

func TestEvaluate_TiesRoundHalfToEven(t *testing.T) {
	tests := []struct {
		name string
		in   models.InventoryItem
		days models.StockoutDays
		cost float64
	}{
		{"down to even", item("TIE-LOW", 1, 4, 0, 1, 2, 0.125), 0.2, 0.12},
		{"up to even", item("TIE-HIGH", 3, 4, 0, 1, 4, 0.375), 0.8, 0.38},
		{"no tie", item("PLAIN", 1, 3, 0, 1, 2, 0.126), 0.3, 0.13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert, err := Evaluate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.days, alert.DaysUntilStockout)
			assert.Equal(t, tt.cost, alert.EstimatedCost)
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	in := item("FIL-PETG-BLK", 45, 3, 5, 1.5, 200, 20)

	first, err := Evaluate(in)
	require.NoError(t, err)
	second, err := Evaluate(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluate_SeverityMonotonicInStock(t *testing.T) {
	fixtures := []models.InventoryItem{
		item("A", 0, 8, 5, 1.5, 200, 18),
		item("B", 0, 2, 7, 1.5, 100, 25),
		item("C", 0, 0, 7, 1.5, 100, 25),
		item("D", 0, 4, 3, 1.2, 500, 1.5),
	}

	for _, base := range fixtures {
		prev := models.SeverityOK
		for stock := 300; stock >= 0; stock-- {
			base.CurrentStock = stock
			alert, err := Evaluate(base)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, alert.Severity, prev, "sku %s stock %d", base.SKU, stock)
			prev = alert.Severity
		}
	}
}

func TestEvaluate_ThresholdInvariants(t *testing.T) {
	for stock := 0; stock < 60; stock += 7 {
		for usage := 0.0; usage < 12; usage += 1.75 {
			for lead := 0; lead < 10; lead += 3 {
				alert, err := Evaluate(item("X", stock, usage, lead, 1.3, 80, 2.5))
				require.NoError(t, err)
				assert.GreaterOrEqual(t, alert.SafetyStock, 0)
				assert.GreaterOrEqual(t, alert.ReorderPoint, alert.SafetyStock)
				assert.GreaterOrEqual(t, alert.RecommendedOrder, 0)
			}
		}
	}
}

func TestValidate_RejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name  string
		item  models.InventoryItem
		field string
	}{
		{"empty sku", item("", 1, 1, 1, 1, 1, 1), "sku"},
		{"negative stock", item("X", -1, 1, 1, 1, 1, 1), "current_stock"},
		{"negative usage", item("X", 1, -0.5, 1, 1, 1, 1), "avg_daily_usage"},
		{"nan usage", item("X", 1, math.NaN(), 1, 1, 1, 1), "avg_daily_usage"},
		{"infinite usage", item("X", 1, math.Inf(1), 1, 1, 1, 1), "avg_daily_usage"},
		{"negative lead time", item("X", 1, 1, -2, 1, 1, 1), "lead_time_days"},
		{"zero safety factor", item("X", 1, 1, 1, 0, 1, 1), "safety_factor"},
		{"negative safety factor", item("X", 1, 1, 1, -1.5, 1, 1), "safety_factor"},
		{"zero max stock", item("X", 1, 1, 1, 1, 0, 1), "max_stock"},
		{"zero unit cost", item("X", 1, 1, 1, 1, 1, 0), "unit_cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.item)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestEvaluateAll_PartialFailure(t *testing.T) {
	items := []models.InventoryItem{
		item("FIL-PLA-WHT", 12, 8, 5, 1.5, 200, 18),
		item("BROKEN", -4, 8, 5, 1.5, 200, 18),
		item("FIL-PLA-BLK", 95, 10, 5, 1.5, 200, 18),
		item("NO-FACTOR", 10, 1, 1, 0, 20, 1),
	}

	result := EvaluateAll(items)

	require.Len(t, result.Alerts, 2)
	assert.Equal(t, "FIL-PLA-WHT", result.Alerts[0].SKU)
	assert.Equal(t, "FIL-PLA-BLK", result.Alerts[1].SKU)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, "BROKEN", result.Failures[0].SKU)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Contains(t, result.Failures[0].Reason, "current_stock")
	assert.Equal(t, "NO-FACTOR", result.Failures[1].SKU)
	assert.Equal(t, 3, result.Failures[1].Index)
}

func TestEvaluateAll_EmptyBatch(t *testing.T) {
	result := EvaluateAll(nil)
	assert.Empty(t, result.Alerts)
	assert.Empty(t, result.Failures)
	assert.NotNil(t, result.Failures)
}

func TestTotalReorderCost_ExcludesOK(t *testing.T) {
	alerts := []models.StockAlert{
		{SKU: "E", Severity: models.SeverityEmergency, EstimatedCost: 100.10},
		{SKU: "C", Severity: models.SeverityCritical, EstimatedCost: 4464.00},
		{SKU: "W", Severity: models.SeverityWarning, EstimatedCost: 0.20},
		{SKU: "O", Severity: models.SeverityOK, EstimatedCost: 9999.99},
	}

	total := TotalReorderCost(alerts)
	assert.True(t, decimal.RequireFromString("4564.30").Equal(total), "got %s", total)
}

func TestTotalReorderCost_Empty(t *testing.T) {
	assert.True(t, TotalReorderCost(nil).IsZero())
}
