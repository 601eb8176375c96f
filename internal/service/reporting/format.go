package reporting

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
	"github.com/mamadbah2/stockmonitor/internal/service/reorder"
)

const (
	reportTimeLayout = "2006-01-02 15:04 MST"
	alertTimeLayout  = "Jan 02, 2006 15:04 MST"
	ruleWidth        = 50
)

// FormatOptions tunes the text stock report.
type FormatOptions struct {
	// CriticalOnly hides the warning and ok sections.
	CriticalOnly bool
}

// FormatAlerts renders a run as a text stock report grouped by severity.
func FormatAlerts(run models.StockRun, opts FormatOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 STOCK REPORT — %s\n", run.CreatedAt.Format(reportTimeLayout))
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n\n")

	groups := reorder.GroupBySeverity(run.Alerts)

	if emergency := groups[models.SeverityEmergency]; len(emergency) > 0 {
		b.WriteString("🆘 EMERGENCY (Out of Stock):\n")
		for _, a := range emergency {
			fmt.Fprintf(&b, "  💀 %s (%s) — ZERO STOCK\n", a.Name, a.SKU)
			fmt.Fprintf(&b, "     ⚡ Recommended order: %d units (%s)\n\n", a.RecommendedOrder, money(a.EstimatedCost))
		}
	}

	if critical := groups[models.SeverityCritical]; len(critical) > 0 {
		b.WriteString("🚨 CRITICAL (Below Safety Stock):\n")
		for _, a := range critical {
			fmt.Fprintf(&b, "  ❌ %s (%s) — %d left\n", a.Name, a.SKU, a.CurrentStock)
			fmt.Fprintf(&b, "     Usage: %s/day | Stockout in: %s\n", number(a.AvgDailyUsage), horizon(a.DaysUntilStockout))
			fmt.Fprintf(&b, "     ⚡ Recommended order: %d units (%s)\n\n", a.RecommendedOrder, money(a.EstimatedCost))
		}
	}

	if !opts.CriticalOnly {
		if warning := groups[models.SeverityWarning]; len(warning) > 0 {
			b.WriteString("⚠️ WARNING (Approaching Reorder Point):\n")
			for _, a := range warning {
				fmt.Fprintf(&b, "  ⚠️ %s (%s) — %d left\n", a.Name, a.SKU, a.CurrentStock)
				fmt.Fprintf(&b, "     Usage: %s/day | Reorder at: %d\n", number(a.AvgDailyUsage), a.ReorderPoint)
				fmt.Fprintf(&b, "     📦 Recommended order: %d units (%s)\n\n", a.RecommendedOrder, money(a.EstimatedCost))
			}
		}

		fmt.Fprintf(&b, "✅ OK: %d items within normal range\n", len(groups[models.SeverityOK]))
	}

	if len(run.Failures) > 0 {
		b.WriteString("\n⛔ INVALID ITEMS (not evaluated):\n")
		for _, f := range run.Failures {
			fmt.Fprintf(&b, "  • %s — %s\n", failureLabel(f), f.Reason)
		}
	}

	fmt.Fprintf(&b, "\n💰 Total reorder cost estimate: %s", moneyDecimal(reorder.TotalReorderCost(run.Alerts)))

	return b.String()
}

// ConsumptionReport projects usage over the next days, highest usage first.
// Items that run out inside the window are flagged.
func ConsumptionReport(items []models.InventoryItem, days int) string {
	sorted := make([]models.InventoryItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgDailyUsage > sorted[j].AvgDailyUsage
	})

	var b strings.Builder
	fmt.Fprintf(&b, "📈 CONSUMPTION REPORT (%d-day projection)\n", days)
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%-30s %6s %10s %7s %10s\n", "Item", "Daily", fmt.Sprintf("%dd Total", days), "Stock", "Days Left")
	b.WriteString(strings.Repeat("-", 70))

	for _, item := range sorted {
		projected := item.AvgDailyUsage * float64(days)

		left := "never"
		flag := ""
		if item.AvgDailyUsage > 0 {
			daysLeft := float64(item.CurrentStock) / item.AvgDailyUsage
			left = fmt.Sprintf("%.1fd", daysLeft)
			if daysLeft < float64(days) {
				flag = " ⚠️"
			}
		}

		fmt.Fprintf(&b, "\n%-30s %6.1f %10.0f %7d %10s%s", item.Name, item.AvgDailyUsage, projected, item.CurrentStock, left, flag)
	}

	return b.String()
}

// ThresholdTable lists the computed thresholds of every alert.
func ThresholdTable(alerts []models.StockAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-15s %-30s %7s %7s %7s %7s %10s\n", "SKU", "Item", "Stock", "Safety", "Reorder", "Order", "Severity")
	b.WriteString(strings.Repeat("-", 89))
	for _, a := range alerts {
		fmt.Fprintf(&b, "\n%-15s %-30s %7d %7d %7d %7d %10s", a.SKU, a.Name, a.CurrentStock, a.SafetyStock, a.ReorderPoint, a.RecommendedOrder, a.Severity)
	}
	return b.String()
}

// CriticalAlert renders a rush message for a single item.
func CriticalAlert(a models.StockAlert, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 %s ALERT — %s\n\n", strings.ToUpper(a.Severity.String()), now.Format(alertTimeLayout))
	fmt.Fprintf(&b, "❌ %s — %d REMAINING\n", a.Name, a.CurrentStock)
	fmt.Fprintf(&b, "   ⚠️ At current usage (%s/day), stockout in %s\n", number(a.AvgDailyUsage), horizon(a.DaysUntilStockout))
	fmt.Fprintf(&b, "   📦 Recommended: Rush order %d units\n", a.RecommendedOrder)
	fmt.Fprintf(&b, "   💰 Estimated cost: %s", money(a.EstimatedCost))
	if a.Supplier != "" {
		fmt.Fprintf(&b, "\n   🏭 Supplier: %s", a.Supplier)
	}

	return b.String()
}

// ExportJSON renders alerts as indented JSON. Infinite stockout horizons are null.
func ExportJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report json: %w", err)
	}
	return data, nil
}

func failureLabel(f models.ItemError) string {
	switch {
	case f.SKU == "" && f.Row > 0:
		return fmt.Sprintf("row %d", f.Row)
	case f.SKU == "":
		return fmt.Sprintf("item #%d", f.Index+1)
	case f.Row > 0:
		return fmt.Sprintf("%s (row %d)", f.SKU, f.Row)
	default:
		return f.SKU
	}
}

func money(amount float64) string {
	return "$" + humanize.FormatFloat("#,###.##", amount)
}

func moneyDecimal(amount decimal.Decimal) string {
	return money(amount.InexactFloat64())
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func horizon(d models.StockoutDays) string {
	if d.Infinite() {
		return "never"
	}
	return number(float64(d)) + " days"
}
