package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"frontdesk-rental-backend/internal/storage"
	"frontdesk-rental-backend/internal/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// lockTTLMargin covers the work between store round trips while a rental is locked.
const lockTTLMargin = 10 * time.Second

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Sheets       SheetsConfig       `yaml:"sheets"`
	Upload       UploadConfig       `yaml:"upload"`
	Auth         AuthConfig         `yaml:"auth"`
	Redis        RedisConfig        `yaml:"redis"`
	Notification NotificationConfig `yaml:"notification"`
	Pricing      PricingConfig      `yaml:"pricing"`
	Export       ExportConfig       `yaml:"export"`
	Log          LogConfig          `yaml:"log"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                   string   `yaml:"host"`
	Port                   int      `yaml:"port"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
	ReadTimeoutSeconds     int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
	MaxBodyMB              int64    `yaml:"max_body_mb"`
}

// SheetsConfig contains the spreadsheet connection settings
type SheetsConfig struct {
	Driver                  string `yaml:"driver"` // "google" or "memory"
	SpreadsheetID           string `yaml:"spreadsheet_id"`
	ServiceAccountKeyBase64 string `yaml:"service_account_key_base64"`
	RentalsSheet            string `yaml:"rentals_sheet"`
	StaffSheet              string `yaml:"staff_sheet"`
	SchemaVersion           string `yaml:"schema_version"`
	TimeoutSeconds          int    `yaml:"timeout_seconds"`
}

// UploadConfig selects the ID photo backend
type UploadConfig struct {
	Type           string `yaml:"type"` // "apps_script", "s3" or "mock"
	WebAppURL      string `yaml:"web_app_url"`
	MockDir        string `yaml:"mock_dir"`
	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3AccessKey    string `yaml:"s3_access_key"`
	S3SecretKey    string `yaml:"s3_secret_key"`
	S3Prefix       string `yaml:"s3_prefix"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AuthConfig contains the admin session settings
type AuthConfig struct {
	Enabled            bool   `yaml:"enabled"`
	AllowedEmailDomain string `yaml:"allowed_email_domain"`
	SessionSecret      string `yaml:"session_secret"`
	SessionTTLMinutes  int    `yaml:"session_ttl_minutes"`
	FirebaseProjectID  string `yaml:"firebase_project_id"`
	SecureCookie       bool   `yaml:"secure_cookie"`
}

// RedisConfig enables the distributed rental lock
type RedisConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// NotificationConfig contains e-mail settings for trouble reports
type NotificationConfig struct {
	SendGridAPIKey string   `yaml:"sendgrid_api_key"`
	FromEmail      string   `yaml:"from_email"`
	FromName       string   `yaml:"from_name"`
	Recipients     []string `yaml:"recipients"`
}

// PricingConfig overrides the default tariff
type PricingConfig struct {
	LateFeeIncrementMinutes int                `yaml:"late_fee_increment_minutes"`
	LateFeePerIncrement     int                `yaml:"late_fee_per_increment"`
	HotelLuggageUnitPrice   int                `yaml:"hotel_luggage_unit_price"`
	BikePlanHours           map[string]float64 `yaml:"bike_plan_hours"`
}

// ExportConfig contains onsen export settings
type ExportConfig struct {
	TimeZone    string `yaml:"time_zone"`
	PDFFontPath string `yaml:"pdf_font_path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings (seconds field first)
type SchedulerConfig struct {
	FlagLateRentals string `yaml:"flag_late_rentals"`
	DailySummary    string `yaml:"daily_summary"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory is loaded first when present; an empty path means environment only.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	setString := func(dst *string, key string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	setInt := func(dst *int, key string) {
		if val := os.Getenv(key); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(dst *bool, key string) {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}
	setList := func(dst *[]string, key string) {
		if val := os.Getenv(key); val != "" {
			*dst = splitList(val)
		}
	}

	// Server
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setList(&c.Server.AllowedOrigins, "ALLOWED_ORIGINS")

	// Sheets
	setString(&c.Sheets.Driver, "SHEETS_DRIVER")
	setString(&c.Sheets.SpreadsheetID, "GOOGLE_SPREADSHEET_ID")
	setString(&c.Sheets.ServiceAccountKeyBase64, "GOOGLE_SERVICE_ACCOUNT_KEY_BASE64")
	setString(&c.Sheets.SchemaVersion, "SHEETS_SCHEMA_VERSION")

	// Upload
	setString(&c.Upload.Type, "PHOTO_STORAGE_TYPE")
	setString(&c.Upload.WebAppURL, "GOOGLE_APPS_SCRIPT_WEB_APP_URL")
	setString(&c.Upload.MockDir, "UPLOAD_DIR")
	setString(&c.Upload.S3Bucket, "S3_BUCKET")
	setString(&c.Upload.S3Region, "S3_REGION")
	setString(&c.Upload.S3Endpoint, "S3_ENDPOINT")
	setString(&c.Upload.S3AccessKey, "S3_ACCESS_KEY_ID")
	setString(&c.Upload.S3SecretKey, "S3_SECRET_ACCESS_KEY")

	// Auth
	setBool(&c.Auth.Enabled, "AUTH_ENABLED")
	setString(&c.Auth.AllowedEmailDomain, "ALLOWED_EMAIL_DOMAIN")
	setString(&c.Auth.SessionSecret, "SESSION_SECRET")
	setString(&c.Auth.FirebaseProjectID, "FIREBASE_PROJECT_ID")

	// Redis
	setBool(&c.Redis.Enabled, "REDIS_ENABLED")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	// Notification
	setString(&c.Notification.SendGridAPIKey, "SENDGRID_API_KEY")
	setString(&c.Notification.FromEmail, "NOTIFICATION_FROM_EMAIL")
	setList(&c.Notification.Recipients, "NOTIFICATION_RECIPIENTS")

	// Export
	setString(&c.Export.PDFFontPath, "EXPORT_PDF_FONT_PATH")

	// Log
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 30
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 60
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 15
	}
	if c.Server.MaxBodyMB == 0 {
		// ID photos travel as base64 inside the JSON body
		c.Server.MaxBodyMB = 10
	}

	if c.Sheets.Driver == "" {
		c.Sheets.Driver = "google"
	}
	if c.Sheets.TimeoutSeconds == 0 {
		c.Sheets.TimeoutSeconds = 10
	}

	if c.Upload.Type == "" {
		c.Upload.Type = "apps_script"
	}
	if c.Upload.TimeoutSeconds == 0 {
		c.Upload.TimeoutSeconds = 30
	}

	if c.Auth.SessionTTLMinutes == 0 {
		c.Auth.SessionTTLMinutes = 12 * 60
	}

	if c.Notification.FromName == "" {
		c.Notification.FromName = "Front Desk"
	}

	if c.Export.TimeZone == "" {
		c.Export.TimeZone = "Asia/Tokyo"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Scheduler.FlagLateRentals == "" {
		c.Scheduler.FlagLateRentals = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.DailySummary == "" {
		c.Scheduler.DailySummary = "0 0 22 * * *" // 22:00 server time
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Sheets.Driver {
	case "google":
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("spreadsheet id is required")
		}
		if c.Sheets.ServiceAccountKeyBase64 == "" {
			return fmt.Errorf("service account key is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown sheets driver: %s", c.Sheets.Driver)
	}

	switch c.Upload.Type {
	case "apps_script":
		if c.Upload.WebAppURL == "" {
			return fmt.Errorf("apps script web app url is required")
		}
	case "s3":
		if c.Upload.S3Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown upload type: %s", c.Upload.Type)
	}

	if c.Auth.Enabled {
		if c.Auth.AllowedEmailDomain == "" {
			return fmt.Errorf("allowed email domain is required when auth is enabled")
		}
		if len(c.Auth.SessionSecret) < 32 {
			return fmt.Errorf("session secret must be at least 32 characters")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required when redis is enabled")
	}

	if _, err := time.LoadLocation(c.Export.TimeZone); err != nil {
		return fmt.Errorf("invalid export time zone %q: %w", c.Export.TimeZone, err)
	}
	return nil
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SheetsTimeout bounds a single spreadsheet round trip.
func (c *Config) SheetsTimeout() time.Duration {
	return time.Duration(c.Sheets.TimeoutSeconds) * time.Second
}

// LockTTL is the Redis lock expiry. A held lock spans a row read, a photo
// upload and a row write, so the TTL never drops below those timeouts combined.
func (c *Config) LockTTL() time.Duration {
	floor := 2*c.SheetsTimeout() + time.Duration(c.Upload.TimeoutSeconds)*time.Second + lockTTLMargin
	if ttl := time.Duration(c.Redis.LockTTLSeconds) * time.Second; ttl > floor {
		return ttl
	}
	return floor
}

// SessionTTL is how long an admin session cookie stays valid.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLMinutes) * time.Minute
}

// StorageConfig maps the upload section onto the photo storage factory input.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Type:          c.Upload.Type,
		AppsScriptURL: c.Upload.WebAppURL,
		MockDir:       c.Upload.MockDir,
		S3Bucket:      c.Upload.S3Bucket,
		S3Region:      c.Upload.S3Region,
		S3Endpoint:    c.Upload.S3Endpoint,
		S3AccessKey:   c.Upload.S3AccessKey,
		S3SecretKey:   c.Upload.S3SecretKey,
		S3Prefix:      c.Upload.S3Prefix,
		Timeout:       time.Duration(c.Upload.TimeoutSeconds) * time.Second,
	}
}

// PricingRules merges configured tariff values over the defaults.
func (c *Config) PricingRules() utils.Pricing {
	p := utils.DefaultPricing()
	if c.Pricing.LateFeeIncrementMinutes > 0 {
		p.LateFeeIncrementMinutes = c.Pricing.LateFeeIncrementMinutes
	}
	if c.Pricing.LateFeePerIncrement > 0 {
		p.LateFeePerIncrement = c.Pricing.LateFeePerIncrement
	}
	if c.Pricing.HotelLuggageUnitPrice > 0 {
		p.HotelLuggageUnitPrice = c.Pricing.HotelLuggageUnitPrice
	}
	if len(c.Pricing.BikePlanHours) > 0 {
		plans := make(map[string]float64, len(p.BikePlanHours)+len(c.Pricing.BikePlanHours))
		for k, v := range p.BikePlanHours {
			plans[k] = v
		}
		for k, v := range c.Pricing.BikePlanHours {
			plans[strings.ToLower(k)] = v
		}
		p.BikePlanHours = plans
	}
	return p
}

// ExportLocation is the time zone onsen export timestamps are rendered in.
func (c *Config) ExportLocation() *time.Location {
	loc, err := time.LoadLocation(c.Export.TimeZone)
	if err != nil {
		return nil
	}
	return loc
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
