package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
	"github.com/mamadbah2/stockmonitor/internal/repository/mongodb"
	"github.com/mamadbah2/stockmonitor/internal/service/reorder"
	"github.com/mamadbah2/stockmonitor/internal/service/reporting"
)

// StockService is the reporting surface used by the stock endpoints.
type StockService interface {
	Run(ctx context.Context, opts reporting.RunOptions) (models.StockRun, error)
	Evaluate(items []models.InventoryItem) models.StockRun
	Consumption(ctx context.Context, category string, days int) (string, error)
	LatestRun(ctx context.Context) (models.StockRun, error)
}

// Notifier runs a check and pushes its report.
type Notifier interface {
	CheckAndNotify(ctx context.Context, req models.NotifyRequest) (models.NotifyResult, error)
}

// StockHandler serves the stock monitoring API.
type StockHandler struct {
	svc             StockService
	notifier        Notifier
	consumptionDays int
	logger          *zap.Logger
}

// NewStockHandler constructs the stock API handler. notifier may be nil, in
// which case the notify endpoint reports the feature as unavailable.
func NewStockHandler(svc StockService, notifier Notifier, consumptionDays int, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if consumptionDays <= 0 {
		consumptionDays = 7
	}
	return &StockHandler{svc: svc, notifier: notifier, consumptionDays: consumptionDays, logger: logger}
}

// Alerts evaluates the current inventory snapshot.
func (h *StockHandler) Alerts(c *gin.Context) {
	criticalOnly, err := queryBool(c, "critical_only")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "critical_only must be a boolean"})
		return
	}

	run, err := h.svc.Run(c.Request.Context(), reporting.RunOptions{Category: c.Query("category")})
	if err != nil {
		h.logger.Error("stock check failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to read inventory"})
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "text":
		c.String(http.StatusOK, reporting.FormatAlerts(run, reporting.FormatOptions{CriticalOnly: criticalOnly}))
	case "json":
		if criticalOnly {
			run.Alerts = reorder.FilterBySeverity(run.Alerts, models.SeverityCritical)
		}
		c.JSON(http.StatusOK, run)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be text or json"})
	}
}

// itemRequest mirrors models.InventoryItem with pointers so absent fields can
// be told apart from zero values. Required fields match the inventory sheet.
type itemRequest struct {
	SKU           *string  `json:"sku"`
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Supplier      string   `json:"supplier"`
	CurrentStock  *int     `json:"current_stock"`
	AvgDailyUsage *float64 `json:"avg_daily_usage"`
	LeadTimeDays  *int     `json:"lead_time_days"`
	SafetyFactor  *float64 `json:"safety_factor"`
	MaxStock      *int     `json:"max_stock"`
	UnitCost      *float64 `json:"unit_cost"`
}

func (r itemRequest) toItem() (models.InventoryItem, string) {
	switch {
	case blank(r.SKU):
		return models.InventoryItem{}, "missing sku"
	case blank(r.Name):
		return models.InventoryItem{}, "missing name"
	case blank(r.Category):
		return models.InventoryItem{}, "missing category"
	case r.CurrentStock == nil:
		return models.InventoryItem{}, "missing current_stock"
	case r.AvgDailyUsage == nil:
		return models.InventoryItem{}, "missing avg_daily_usage"
	case r.LeadTimeDays == nil:
		return models.InventoryItem{}, "missing lead_time_days"
	case r.SafetyFactor == nil:
		return models.InventoryItem{}, "missing safety_factor"
	case r.MaxStock == nil:
		return models.InventoryItem{}, "missing max_stock"
	case r.UnitCost == nil:
		return models.InventoryItem{}, "missing unit_cost"
	}

	return models.InventoryItem{
		SKU:           strings.TrimSpace(*r.SKU),
		Name:          strings.TrimSpace(*r.Name),
		Category:      strings.TrimSpace(*r.Category),
		Supplier:      strings.TrimSpace(r.Supplier),
		CurrentStock:  *r.CurrentStock,
		AvgDailyUsage: *r.AvgDailyUsage,
		LeadTimeDays:  *r.LeadTimeDays,
		SafetyFactor:  *r.SafetyFactor,
		MaxStock:      *r.MaxStock,
		UnitCost:      *r.UnitCost,
	}, ""
}

func blank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}

// Evaluate scores the items in the request body. Malformed or incomplete
// items are returned as failures next to the alerts of the valid ones.
func (h *StockHandler) Evaluate(c *gin.Context) {
	var raw []json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON array of items"})
		return
	}

	var (
		items    []models.InventoryItem
		origin   []int
		failures []models.ItemError
	)

	for i, msg := range raw {
		var req itemRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			failures = append(failures, models.ItemError{Index: i, Reason: "malformed item: " + err.Error()})
			continue
		}
		item, reason := req.toItem()
		if reason != "" {
			sku := ""
			if req.SKU != nil {
				sku = strings.TrimSpace(*req.SKU)
			}
			failures = append(failures, models.ItemError{SKU: sku, Index: i, Reason: reason})
			continue
		}
		items = append(items, item)
		origin = append(origin, i)
	}

	run := h.svc.Evaluate(items)
	for _, f := range run.Failures {
		f.Index = origin[f.Index]
		failures = append(failures, f)
	}
	sort.SliceStable(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })

	if failures == nil {
		failures = []models.ItemError{}
	}
	run.Failures = failures

	c.JSON(http.StatusOK, run)
}

// Consumption renders the usage projection as text.
func (h *StockHandler) Consumption(c *gin.Context) {
	days := h.consumptionDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}

	report, err := h.svc.Consumption(c.Request.Context(), c.Query("category"), days)
	if err != nil {
		h.logger.Error("consumption report failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to read inventory"})
		return
	}

	c.String(http.StatusOK, report)
}

// LatestRun returns the newest persisted run.
func (h *StockHandler) LatestRun(c *gin.Context) {
	run, err := h.svc.LatestRun(c.Request.Context())
	switch {
	case errors.Is(err, mongodb.ErrNoRuns), errors.Is(err, reporting.ErrHistoryDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("failed loading latest run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load run history"})
	default:
		c.JSON(http.StatusOK, run)
	}
}

// Notify runs a persisted check and pushes the report now.
func (h *StockHandler) Notify(c *gin.Context) {
	if h.notifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications are not configured"})
		return
	}

	// An empty body notifies the configured recipients about every category.
	var req models.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.notifier.CheckAndNotify(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("notify failed", zap.Error(err), zap.Strings("sent", result.Sent))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": result})
		return
	}

	c.JSON(http.StatusOK, result)
}

func queryBool(c *gin.Context, key string) (bool, error) {
	v := c.Query(key)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
