package models

import "time"

// StockRun is one persisted evaluation of the inventory.
type StockRun struct {
	RunID            string         `bson:"run_id" json:"run_id"`
	Source           string         `bson:"source" json:"source"`
	Category         string         `bson:"category,omitempty" json:"category,omitempty"`
	Alerts           []StockAlert   `bson:"alerts" json:"alerts"`
	Failures         []ItemError    `bson:"failures" json:"failures"`
	Counts           map[string]int `bson:"counts" json:"counts"`
	TotalReorderCost float64        `bson:"total_reorder_cost" json:"total_reorder_cost"`
	CreatedAt        time.Time      `bson:"created_at" json:"created_at"`
}
