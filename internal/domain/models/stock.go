package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// InventoryItem is one stocked SKU as supplied by an inventory source.
type InventoryItem struct {
	SKU           string  `bson:"sku" json:"sku"`
	Name          string  `bson:"name" json:"name"`
	Category      string  `bson:"category" json:"category"`
	Supplier      string  `bson:"supplier,omitempty" json:"supplier,omitempty"`
	CurrentStock  int     `bson:"current_stock" json:"current_stock"`
	AvgDailyUsage float64 `bson:"avg_daily_usage" json:"avg_daily_usage"`
	LeadTimeDays  int     `bson:"lead_time_days" json:"lead_time_days"`
	SafetyFactor  float64 `bson:"safety_factor" json:"safety_factor"`
	MaxStock      int     `bson:"max_stock" json:"max_stock"`
	UnitCost      float64 `bson:"unit_cost" json:"unit_cost"`

	// Position is the item's offset in the source snapshot it was read from.
	Position int `bson:"-" json:"-"`
	// Row is the spreadsheet row number, or 0 when the source is not a sheet.
	Row int `bson:"-" json:"-"`
}

// Severity classifies how urgently an item needs restocking. Higher values are
// more urgent, so severities compare with the usual operators.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
	SeverityEmergency
)

var severityLabels = [...]string{"ok", "warning", "critical", "emergency"}

// Severities lists every severity from most to least urgent.
var Severities = []Severity{SeverityEmergency, SeverityCritical, SeverityWarning, SeverityOK}

func (s Severity) String() string {
	if s < SeverityOK || s > SeverityEmergency {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityLabels[s]
}

// Actionable reports whether the item should be reordered.
func (s Severity) Actionable() bool {
	return s > SeverityOK
}

// ParseSeverity resolves a label such as "critical" into a Severity.
func ParseSeverity(label string) (Severity, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for i, l := range severityLabels {
		if l == normalized {
			return Severity(i), nil
		}
	}
	return SeverityOK, fmt.Errorf("unknown severity %q", label)
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityOK || s > SeverityEmergency {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalBSONValue stores the severity as its label so run history stays readable.
func (s Severity) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(s.String())
}

func (s *Severity) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var label string
	if err := bson.UnmarshalValue(t, data, &label); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(label))
}

// StockoutDays is the number of days until current stock runs out. It is +Inf
// when the item has no usage; JSON has no infinity so that case encodes as null.
type StockoutDays float64

// Infinite reports whether the item never runs out from usage alone.
func (d StockoutDays) Infinite() bool {
	return math.IsInf(float64(d), 1)
}

func (d StockoutDays) MarshalJSON() ([]byte, error) {
	if d.Infinite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(d))
}

func (d *StockoutDays) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = StockoutDays(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = StockoutDays(v)
	return nil
}

// StockAlert is the evaluation of one InventoryItem.
type StockAlert struct {
	SKU               string       `bson:"sku" json:"sku"`
	Name              string       `bson:"name" json:"name"`
	Category          string       `bson:"category" json:"category"`
	Supplier          string       `bson:"supplier,omitempty" json:"supplier,omitempty"`
	CurrentStock      int          `bson:"current_stock" json:"current_stock"`
	AvgDailyUsage     float64      `bson:"avg_daily_usage" json:"avg_daily_usage"`
	LeadTimeDays      int          `bson:"lead_time_days" json:"lead_time_days"`
	SafetyStock       int          `bson:"safety_stock" json:"safety_stock"`
	ReorderPoint      int          `bson:"reorder_point" json:"reorder_point"`
	RecommendedOrder  int          `bson:"recommended_order" json:"recommended_order"`
	EstimatedCost     float64      `bson:"estimated_cost" json:"estimated_cost"`
	DaysUntilStockout StockoutDays `bson:"days_until_stockout" json:"days_until_stockout"`
	Severity          Severity     `bson:"severity" json:"severity"`
}

// ItemError records why an item was rejected. Index is the item's position in
// the snapshot or request batch it came from; Row is set for sheet rows.
type ItemError struct {
	SKU    string `bson:"sku" json:"sku"`
	Index  int    `bson:"index" json:"index"`
	Row    int    `bson:"row,omitempty" json:"row,omitempty"`
	Reason string `bson:"reason" json:"reason"`
}

func (e ItemError) Error() string {
	if e.SKU == "" {
		return fmt.Sprintf("item #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("item %s: %s", e.SKU, e.Reason)
}

// Evaluation is the outcome of evaluating a batch: alerts for the valid items in
// input order, plus the items that failed validation.
type Evaluation struct {
	Alerts   []StockAlert `json:"alerts"`
	Failures []ItemError  `json:"failures"`
}
