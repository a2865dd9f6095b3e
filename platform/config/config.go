// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// SheetsConfig provides settings for the Google Sheets/Drive client.
type SheetsConfig interface {
	GetSheetsBaseURL() string
	GetDriveBaseURL() string
	GetGoogleAPIKey() string
}

// DirectoryConfig provides settings for the contact directory lookups.
type DirectoryConfig interface {
	GetDirectorySpreadsheetID() string
	GetGreetingRange() string
	GetPermissionRange() string
}

// OrdersConfig provides settings for order status lookups.
type OrdersConfig interface {
	GetLiveSpreadsheetID() string
	GetLiveRange() string
	GetArchiveFolderID() string
	GetArchiveRange() string
	GetStageTableFile() string
}

// StockConfig provides settings for stock lookups.
type StockConfig interface {
	GetStockFolderID() string
	GetStockRange() string
}

// SessionConfig provides settings for the conversation session store.
type SessionConfig interface {
	GetRedisURL() string
	GetSessionTTL() time.Duration
}

// WhatsAppConfig provides settings for the outbound WhatsApp gateway.
type WhatsAppConfig interface {
	GetWhatsAppBaseURL() string
	GetWhatsAppToken() string
}

// FormConfig provides settings for prefilled order form links.
type FormConfig interface {
	GetOrderFormURL() string
	GetFormStoreField() string
	GetFormPhoneField() string
	GetFormQualityField() string
	GetContactAddress() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string

	CORSAllowAll bool
	CORSOrigins  []string

	SheetsBaseURL string
	DriveBaseURL  string
	GoogleAPIKey  string

	DirectorySpreadsheetID string
	GreetingRange          string
	PermissionRange        string

	LiveSpreadsheetID string
	LiveRange         string
	ArchiveFolderID   string
	ArchiveRange      string
	StageTableFile    string

	StockFolderID string
	StockRange    string

	RedisURL   string
	SessionTTL time.Duration

	WhatsAppBaseURL string
	WhatsAppToken   string

	OrderFormURL     string
	FormStoreField   string
	FormPhoneField   string
	FormQualityField string
	ContactAddress   string
}

// Load reads configuration from the environment (and .env when present)
// and validates the required keys.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", ""))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "true"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		CORSAllowAll: corsAllowAll,
		CORSOrigins:  corsOrigins,

		SheetsBaseURL: getEnv("SHEETS_BASE_URL", "https://sheets.googleapis.com"),
		DriveBaseURL:  getEnv("DRIVE_BASE_URL", "https://www.googleapis.com"),
		GoogleAPIKey:  getEnv("GOOGLE_API_KEY", ""),

		DirectorySpreadsheetID: getEnv("DIRECTORY_SPREADSHEET_ID", ""),
		GreetingRange:          getEnv("GREETING_RANGE", "Contacts!A1:D"),
		PermissionRange:        getEnv("PERMISSION_RANGE", "Stores!A1:B"),

		LiveSpreadsheetID: getEnv("LIVE_SPREADSHEET_ID", ""),
		LiveRange:         getEnv("LIVE_RANGE", "A2:S"),
		ArchiveFolderID:   getEnv("ARCHIVE_FOLDER_ID", ""),
		ArchiveRange:      getEnv("ARCHIVE_RANGE", "A2:F"),
		StageTableFile:    getEnv("STAGE_TABLE_FILE", ""),

		StockFolderID: getEnv("STOCK_FOLDER_ID", ""),
		StockRange:    getEnv("STOCK_RANGE", "A2:D"),

		RedisURL:   getEnv("REDIS_URL", ""),
		SessionTTL: mustDuration(getEnv("SESSION_TTL", "24h")),

		WhatsAppBaseURL: getEnv("WHATSAPP_BASE_URL", ""),
		WhatsAppToken:   getEnv("WHATSAPP_TOKEN", ""),

		OrderFormURL:     getEnv("ORDER_FORM_URL", ""),
		FormStoreField:   getEnv("FORM_STORE_FIELD", "entry.1277095329"),
		FormPhoneField:   getEnv("FORM_PHONE_FIELD", "entry.1644261192"),
		FormQualityField: getEnv("FORM_QUALITY_FIELD", "entry.1671989732"),
		ContactAddress:   getEnv("CONTACT_ADDRESS", ""),
	}

	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if cfg.DirectorySpreadsheetID == "" {
		return nil, fmt.Errorf("DIRECTORY_SPREADSHEET_ID is required")
	}
	if cfg.LiveSpreadsheetID == "" {
		return nil, fmt.Errorf("LIVE_SPREADSHEET_ID is required")
	}
	if cfg.ArchiveFolderID == "" {
		return nil, fmt.Errorf("ARCHIVE_FOLDER_ID is required")
	}
	if cfg.StockFolderID == "" {
		return nil, fmt.Errorf("STOCK_FOLDER_ID is required")
	}
	if cfg.OrderFormURL == "" {
		return nil, fmt.Errorf("ORDER_FORM_URL is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration")
	}

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetSheetsBaseURL() string { return c.SheetsBaseURL }
func (c *Config) GetDriveBaseURL() string  { return c.DriveBaseURL }
func (c *Config) GetGoogleAPIKey() string  { return c.GoogleAPIKey }

func (c *Config) GetDirectorySpreadsheetID() string { return c.DirectorySpreadsheetID }
func (c *Config) GetGreetingRange() string          { return c.GreetingRange }
func (c *Config) GetPermissionRange() string        { return c.PermissionRange }

func (c *Config) GetLiveSpreadsheetID() string { return c.LiveSpreadsheetID }
func (c *Config) GetLiveRange() string         { return c.LiveRange }
func (c *Config) GetArchiveFolderID() string   { return c.ArchiveFolderID }
func (c *Config) GetArchiveRange() string      { return c.ArchiveRange }
func (c *Config) GetStageTableFile() string    { return c.StageTableFile }

func (c *Config) GetStockFolderID() string { return c.StockFolderID }
func (c *Config) GetStockRange() string    { return c.StockRange }

func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

func (c *Config) GetWhatsAppBaseURL() string { return c.WhatsAppBaseURL }
func (c *Config) GetWhatsAppToken() string   { return c.WhatsAppToken }

func (c *Config) GetOrderFormURL() string     { return c.OrderFormURL }
func (c *Config) GetFormStoreField() string   { return c.FormStoreField }
func (c *Config) GetFormPhoneField() string   { return c.FormPhoneField }
func (c *Config) GetFormQualityField() string { return c.FormQualityField }
func (c *Config) GetContactAddress() string   { return c.ContactAddress }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
