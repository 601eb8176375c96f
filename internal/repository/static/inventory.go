package static

import (
	"context"
	"slices"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
)

// SourceName identifies this source in run history.
const SourceName = "static"

var sampleInventory = []models.InventoryItem{
	{SKU: "FIL-PLA-WHT", Name: "PLA White 1kg", Category: "filament", Supplier: "PolyMaker", CurrentStock: 12, AvgDailyUsage: 8, LeadTimeDays: 5, SafetyFactor: 1.5, MaxStock: 200, UnitCost: 18.00},
	{SKU: "FIL-PLA-BLK", Name: "PLA Black 1kg", Category: "filament", Supplier: "PolyMaker", CurrentStock: 95, AvgDailyUsage: 10, LeadTimeDays: 5, SafetyFactor: 1.5, MaxStock: 200, UnitCost: 18.00},
	{SKU: "FIL-PETG-BLK", Name: "PETG Black 1kg", Category: "filament", Supplier: "eSun", CurrentStock: 45, AvgDailyUsage: 3, LeadTimeDays: 5, SafetyFactor: 1.5, MaxStock: 200, UnitCost: 20.00},
	{SKU: "FIL-ABS-GRY", Name: "ABS Grey 1kg", Category: "filament", Supplier: "eSun", CurrentStock: 68, AvgDailyUsage: 2, LeadTimeDays: 5, SafetyFactor: 1.5, MaxStock: 150, UnitCost: 22.00},
	{SKU: "FIL-TPU-BLU", Name: "TPU Blue 1kg", Category: "filament", Supplier: "NinjaTek", CurrentStock: 30, AvgDailyUsage: 1, LeadTimeDays: 7, SafetyFactor: 1.5, MaxStock: 50, UnitCost: 28.00},
	{SKU: "RES-STD-GRY", Name: "Standard Resin Grey 1L", Category: "resin", Supplier: "Elegoo", CurrentStock: 25, AvgDailyUsage: 2, LeadTimeDays: 7, SafetyFactor: 1.5, MaxStock: 100, UnitCost: 25.00},
	{SKU: "ACC-NZL-04", Name: "0.4mm Brass Nozzles", Category: "parts", Supplier: "Generic", CurrentStock: 52, AvgDailyUsage: 4, LeadTimeDays: 3, SafetyFactor: 1.2, MaxStock: 500, UnitCost: 1.50},
	{SKU: "ACC-PEI-235", Name: "PEI Sheet 235x235mm", Category: "parts", Supplier: "Generic", CurrentStock: 40, AvgDailyUsage: 1, LeadTimeDays: 7, SafetyFactor: 1.5, MaxStock: 100, UnitCost: 12.00},
	{SKU: "ACC-PTFE-TUBE", Name: "PTFE Tube 1m", Category: "parts", Supplier: "Capricorn", CurrentStock: 85, AvgDailyUsage: 2, LeadTimeDays: 5, SafetyFactor: 1.5, MaxStock: 200, UnitCost: 3.00},
}

// Source serves a fixed in-memory inventory table.
type Source struct {
	items []models.InventoryItem
}

// NewSource returns a source over items. A nil slice serves the shop's sample table.
func NewSource(items []models.InventoryItem) *Source {
	if items == nil {
		items = sampleInventory
	}
	cloned := slices.Clone(items)
	for i := range cloned {
		cloned[i].Position = i
	}
	return &Source{items: cloned}
}

// Name implements the inventory source contract.
func (s *Source) Name() string {
	return SourceName
}

// ListItems returns a copy of the table so callers cannot mutate later snapshots.
func (s *Source) ListItems(_ context.Context) ([]models.InventoryItem, []models.ItemError, error) {
	return slices.Clone(s.items), nil, nil
}
