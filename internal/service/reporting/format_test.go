package reporting

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
)

func sampleRun() models.StockRun {
	return models.StockRun{
		CreatedAt: fixedNow,
		Alerts: []models.StockAlert{
			{SKU: "E-1", Name: "Empty Spool", CurrentStock: 0, RecommendedOrder: 50, EstimatedCost: 900, Severity: models.SeverityEmergency, DaysUntilStockout: 0},
			{SKU: "FIL-PLA-WHT", Name: "PLA White 1kg", CurrentStock: 12, AvgDailyUsage: 8, RecommendedOrder: 248, EstimatedCost: 4464, DaysUntilStockout: 1.5, Severity: models.SeverityCritical},
			{SKU: "FIL-PLA-BLK", Name: "PLA Black 1kg", CurrentStock: 95, AvgDailyUsage: 10, ReorderPoint: 125, RecommendedOrder: 180, EstimatedCost: 3240, DaysUntilStockout: 9.5, Severity: models.SeverityWarning},
			{SKU: "OK-1", Name: "Fine", CurrentStock: 80, EstimatedCost: 10, Severity: models.SeverityOK},
		},
		Failures: []models.ItemError{{SKU: "BAD", Index: 4, Reason: "missing unit_cost"}},
	}
}

func TestFormatAlerts_Full(t *testing.T) {
	report := FormatAlerts(sampleRun(), FormatOptions{})

	assert.True(t, strings.HasPrefix(report, "📊 STOCK REPORT — 2026-02-24 08:00 UTC"))
	assert.Contains(t, report, "🆘 EMERGENCY (Out of Stock):")
	assert.Contains(t, report, "Empty Spool (E-1) — ZERO STOCK")
	assert.Contains(t, report, "PLA White 1kg (FIL-PLA-WHT) — 12 left")
	assert.Contains(t, report, "Usage: 8/day | Stockout in: 1.5 days")
	assert.Contains(t, report, "Recommended order: 248 units ($4,464.00)")
	assert.Contains(t, report, "Reorder at: 125")
	assert.Contains(t, report, "✅ OK: 1 items within normal range")
	assert.Contains(t, report, "BAD — missing unit_cost")
	assert.True(t, strings.HasSuffix(report, "💰 Total reorder cost estimate: $8,604.00"))
}

func TestFormatAlerts_FailureLabelsUseSheetRows(t *testing.T) {
	run := sampleRun()
	run.Failures = []models.ItemError{
		{Index: 0, Row: 2, Reason: "missing sku"},
		{SKU: "ZERO-SF", Index: 1, Row: 3, Reason: "safety_factor must be > 0"},
		{Index: 0, Reason: "malformed item"},
	}

	report := FormatAlerts(run, FormatOptions{})
	assert.Contains(t, report, "• row 2 — missing sku")
	assert.Contains(t, report, "• ZERO-SF (row 3) — safety_factor")
	assert.Contains(t, report, "• item #1 — malformed item")
	assert.NotContains(t, report, "row 0")
}

func TestFormatAlerts_CriticalOnly(t *testing.T) {
	report := FormatAlerts(sampleRun(), FormatOptions{CriticalOnly: true})

	assert.Contains(t, report, "CRITICAL")
	assert.Contains(t, report, "EMERGENCY")
	assert.NotContains(t, report, "WARNING")
	assert.NotContains(t, report, "✅ OK")
	assert.Contains(t, report, "$8,604.00")
}

func TestConsumptionReport(t *testing.T) {
	items := []models.InventoryItem{
		{Name: "Slow", CurrentStock: 30, AvgDailyUsage: 1},
		{Name: "Fast", CurrentStock: 12, AvgDailyUsage: 8},
		{Name: "Idle", CurrentStock: 4, AvgDailyUsage: 0},
	}

	report := ConsumptionReport(items, 7)
	lines := strings.Split(report, "\n")

	require.Len(t, lines, 8)
	assert.Equal(t, "📈 CONSUMPTION REPORT (7-day projection)", lines[0])
	assert.Contains(t, lines[3], "7d Total")
	assert.True(t, strings.HasPrefix(lines[5], "Fast"))
	assert.Contains(t, lines[5], "1.5d ⚠️")
	assert.Contains(t, lines[5], "56")
	assert.True(t, strings.HasPrefix(lines[6], "Slow"))
	assert.NotContains(t, lines[6], "⚠️")
	assert.Contains(t, report, "never")
}

func TestThresholdTable(t *testing.T) {
	table := ThresholdTable(sampleRun().Alerts)
	assert.Contains(t, table, "FIL-PLA-BLK")
	assert.Contains(t, table, "warning")
}

func TestCriticalAlert(t *testing.T) {
	alert := sampleRun().Alerts[1]
	alert.Supplier = "PolyMaker"

	msg := CriticalAlert(alert, fixedNow)
	assert.Contains(t, msg, "🚨 CRITICAL ALERT — Feb 24, 2026 08:00 UTC")
	assert.Contains(t, msg, "PLA White 1kg — 12 REMAINING")
	assert.Contains(t, msg, "stockout in 1.5 days")
	assert.Contains(t, msg, "Rush order 248 units")
	assert.Contains(t, msg, "$4,464.00")
	assert.Contains(t, msg, "Supplier: PolyMaker")
}

func TestExportJSON_InfiniteHorizonIsNull(t *testing.T) {
	alerts := []models.StockAlert{
		{SKU: "IDLE", DaysUntilStockout: models.StockoutDays(math.Inf(1)), Severity: models.SeverityOK},
		{SKU: "BUSY", DaysUntilStockout: 2.5, Severity: models.SeverityCritical},
	}

	data, err := ExportJSON(alerts)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Nil(t, decoded[0]["days_until_stockout"])
	assert.Equal(t, "ok", decoded[0]["severity"])
	assert.Equal(t, 2.5, decoded[1]["days_until_stockout"])
	assert.Equal(t, "critical", decoded[1]["severity"])

	var roundTrip []models.StockAlert
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	assert.True(t, roundTrip[0].DaysUntilStockout.Infinite())
	assert.Equal(t, models.SeverityCritical, roundTrip[1].Severity)
}
