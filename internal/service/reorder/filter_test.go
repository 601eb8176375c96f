package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
)

func TestFilterByCategory(t *testing.T) {
	items := []models.InventoryItem{
		{SKU: "A", Category: "filament"},
		{SKU: "B", Category: "resin"},
		{SKU: "C", Category: "Filament"},
	}

	assert.Len(t, FilterByCategory(items, ""), 3)

	filtered := FilterByCategory(items, "filament")
	assert.Equal(t, []string{"A", "C"}, skus(filtered))
	assert.Empty(t, FilterByCategory(items, "parts"))
}

func TestFilterAndGroupBySeverity(t *testing.T) {
	alerts := []models.StockAlert{
		{SKU: "ok-1", Severity: models.SeverityOK},
		{SKU: "crit-1", Severity: models.SeverityCritical},
		{SKU: "warn-1", Severity: models.SeverityWarning},
		{SKU: "emer-1", Severity: models.SeverityEmergency},
		{SKU: "crit-2", Severity: models.SeverityCritical},
	}

	critical := FilterBySeverity(alerts, models.SeverityCritical)
	assert.Len(t, critical, 3)
	assert.Equal(t, "crit-1", critical[0].SKU)

	groups := GroupBySeverity(alerts)
	assert.Len(t, groups[models.SeverityCritical], 2)
	assert.Equal(t, "crit-2", groups[models.SeverityCritical][1].SKU)

	counts := CountBySeverity(alerts)
	assert.Equal(t, map[string]int{"emergency": 1, "critical": 2, "warning": 1, "ok": 1}, counts)
}

func skus(items []models.InventoryItem) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.SKU)
	}
	return out
}
