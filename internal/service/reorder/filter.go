package reorder

import (
	"strings"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
)

// FilterByCategory keeps the items of one category. An empty category keeps everything.
func FilterByCategory(items []models.InventoryItem, category string) []models.InventoryItem {
	if category == "" {
		return items
	}
	filtered := make([]models.InventoryItem, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(item.Category, category) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// FilterBySeverity keeps alerts at or above min, preserving order.
func FilterBySeverity(alerts []models.StockAlert, min models.Severity) []models.StockAlert {
	filtered := make([]models.StockAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.Severity >= min {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// GroupBySeverity buckets alerts by severity, preserving order within a bucket.
func GroupBySeverity(alerts []models.StockAlert) map[models.Severity][]models.StockAlert {
	groups := make(map[models.Severity][]models.StockAlert, len(models.Severities))
	for _, a := range alerts {
		groups[a.Severity] = append(groups[a.Severity], a)
	}
	return groups
}

// CountBySeverity returns alert counts keyed by severity label.
func CountBySeverity(alerts []models.StockAlert) map[string]int {
	counts := make(map[string]int, len(models.Severities))
	for _, s := range models.Severities {
		counts[s.String()] = 0
	}
	for _, a := range alerts {
		counts[a.Severity.String()]++
	}
	return counts
}
