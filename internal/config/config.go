package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"paybook/internal/core"
)

// Config is read from an optional TOML file and then from the environment;
// environment variables win.
type Config struct {
	// Storage
	DataBackend  string `toml:"data_backend"`
	DataFile     string `toml:"data_file"`
	SQLiteDBPath string `toml:"sqlite_db_path"`

	// Overtime rates used until rates are saved, as "o1,o2,o3"
	DefaultOvertimeRates string `toml:"default_overtime_rates"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// AMQP, disabled when the URL is empty
	AMQPURL        string `toml:"amqp_url"`
	AMQPExchange   string `toml:"amqp_exchange"`
	AMQPRoutingKey string `toml:"amqp_routing_key"`

	// Google Sheets mirror
	GoogleSpreadsheetID      string `toml:"google_spreadsheet_id"`
	GoogleSheetName          string `toml:"google_sheet_name"`
	GoogleServiceAccountFile string `toml:"google_service_account_file"`
	GoogleServiceAccountJSON string `toml:"google_service_account_json"`

	// Mirror worker; MirrorInterval is a Go duration such as "5m"
	MirrorXLSXPath string `toml:"mirror_xlsx_path"`
	MirrorInterval string `toml:"mirror_interval"`
}

// Backends lists the accepted DATA_BACKEND values.
var Backends = []string{"file", "sqlite", "memory"}

func Default() *Config {
	return &Config{
		DataBackend:          "file",
		DataFile:             "./data/paybook.json",
		SQLiteDBPath:         "./data/paybook.db",
		DefaultOvertimeRates: "21,28,42",
		LogLevel:             "info",
		LogFormat:            "text",
		AMQPExchange:         "paybook",
		AMQPRoutingKey:       "records",
		GoogleSheetName:      "Salary",
		MirrorInterval:       "5m",
	}
}

// Load builds the configuration from defaults, the TOML file named by
// PAYBOOK_CONFIG (if any) and the environment.
func Load() (*Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("PAYBOOK_CONFIG")); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile overlays the keys present in a TOML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.DataFile = getEnv("DATA_FILE", c.DataFile)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.DefaultOvertimeRates = getEnv("DEFAULT_OVERTIME_RATES", c.DefaultOvertimeRates)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPRoutingKey = getEnv("AMQP_ROUTING_KEY", c.AMQPRoutingKey)
	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GoogleSheetName = getEnv("GOOGLE_SHEET_NAME", c.GoogleSheetName)
	c.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", c.GoogleServiceAccountFile)
	c.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", c.GoogleServiceAccountJSON)
	c.MirrorXLSXPath = getEnv("MIRROR_XLSX_PATH", c.MirrorXLSXPath)
	c.MirrorInterval = getEnv("MIRROR_INTERVAL", c.MirrorInterval)
}

// Rates parses DefaultOvertimeRates.
func (c *Config) Rates() (core.OvertimeRates, error) {
	parts := strings.Split(c.DefaultOvertimeRates, ",")
	if len(parts) != 3 {
		return core.OvertimeRates{}, fmt.Errorf("default overtime rates %q: want three comma separated values", c.DefaultOvertimeRates)
	}
	rates := core.OvertimeRates{}
	for i, p := range parts {
		v, err := core.ParseAmount(p)
		if err != nil {
			return core.OvertimeRates{}, fmt.Errorf("default overtime rate %d %q: %w", i+1, strings.TrimSpace(p), err)
		}
		switch i {
		case 0:
			rates.Overtime1 = v
		case 1:
			rates.Overtime2 = v
		case 2:
			rates.Overtime3 = v
		}
	}
	if err := rates.Validate(); err != nil {
		return core.OvertimeRates{}, err
	}
	return rates, nil
}

// MirrorEvery parses MirrorInterval.
func (c *Config) MirrorEvery() (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(c.MirrorInterval))
	if err != nil {
		return 0, fmt.Errorf("invalid mirror interval '%s': %w", c.MirrorInterval, err)
	}
	return d, nil
}

// SheetsEnabled reports whether a Google spreadsheet is configured.
func (c *Config) SheetsEnabled() bool {
	return strings.TrimSpace(c.GoogleSpreadsheetID) != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	isValidBackend := false
	for _, backend := range Backends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	switch c.DataBackend {
	case "file":
		if c.DataFile == "" {
			errs = append(errs, "data file path cannot be empty when using file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if _, err := c.Rates(); err != nil {
		errs = append(errs, err.Error())
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errs = append(errs, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errs = append(errs, "Google Sheet name is required when a spreadsheet is configured")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if d, err := c.MirrorEvery(); err != nil {
		errs = append(errs, err.Error())
	} else if d < time.Second {
		errs = append(errs, fmt.Sprintf("invalid mirror interval %v: must be at least 1 second", d))
	} else if d > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid mirror interval %v: must be at most 24 hours", d))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
