package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Inventory source identifiers accepted by INVENTORY_SOURCE.
const (
	SourceStatic = "static"
	SourceSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	WhatsApp WhatsAppConfig
	Sheets   SheetsConfig
	Monitor  MonitorConfig
	MongoDB  MongoDBConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// Delivery is disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	Recipients    []string
}

// Enabled reports whether WhatsApp delivery is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != ""
}

// SheetsConfig contains configuration required to read inventory from Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	InventoryRange  string
	// AlertsRange, when set, receives one appended row per actionable alert.
	AlertsRange string
}

// MonitorConfig drives the stock check itself.
type MonitorConfig struct {
	Source          string
	CronSchedule    string
	Timezone        string
	NotifyAlways    bool
	ConsumptionDays int
}

// MongoDBConfig holds settings for the run history store. History is disabled
// when URI is empty.
type MongoDBConfig struct {
	URI        string
	DBName     string
	Collection string
}

// Enabled reports whether run history is configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string
	Development bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	consumptionDays, err := getenvInt("CONSUMPTION_DAYS", 7)
	if err != nil {
		return nil, err
	}

	notifyAlways, err := getenvBool("NOTIFY_ALWAYS", false)
	if err != nil {
		return nil, err
	}

	development, err := getenvBool("LOG_DEVELOPMENT", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			Recipients:    splitList(os.Getenv("WHATSAPP_ALERT_RECIPIENTS")),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_INVENTORY_ID"),
			InventoryRange:  getenvWithDefault("SHEETS_INVENTORY_RANGE", "Inventory!A2:J"),
			AlertsRange:     os.Getenv("SHEETS_ALERTS_RANGE"),
		},
		Monitor: MonitorConfig{
			Source:          strings.ToLower(getenvWithDefault("INVENTORY_SOURCE", SourceStatic)),
			CronSchedule:    getenvWithDefault("STOCK_CHECK_CRON", "0 8 * * *"),
			Timezone:        getenvWithDefault("TIMEZONE", "UTC"),
			NotifyAlways:    notifyAlways,
			ConsumptionDays: consumptionDays,
		},
		MongoDB: MongoDBConfig{
			URI:        os.Getenv("MONGODB_URI"),
			DBName:     getenvWithDefault("MONGODB_DB_NAME", "stockmonitor"),
			Collection: getenvWithDefault("MONGODB_RUNS_COLLECTION", "stock_runs"),
		},
		Log: LogConfig{
			Level:       getenvWithDefault("LOG_LEVEL", "info"),
			Development: development,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated for every
// enabled feature.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Monitor.Source {
	case SourceStatic:
	case SourceSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when INVENTORY_SOURCE=sheets")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_INVENTORY_ID must be provided when INVENTORY_SOURCE=sheets")
		}
		if c.Sheets.InventoryRange == "" {
			return errors.New("SHEETS_INVENTORY_RANGE must not be empty")
		}
	default:
		return fmt.Errorf("INVENTORY_SOURCE must be %q or %q, got %q", SourceStatic, SourceSheets, c.Monitor.Source)
	}

	if c.Monitor.CronSchedule == "" {
		return errors.New("STOCK_CHECK_CRON must be provided")
	}

	if _, err := time.LoadLocation(c.Monitor.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Monitor.Timezone, err)
	}

	if c.Monitor.ConsumptionDays <= 0 {
		return errors.New("CONSUMPTION_DAYS must be positive")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	return nil
}

// Location returns the scheduler time zone. Validate guarantees it loads.
func (c MonitorConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
