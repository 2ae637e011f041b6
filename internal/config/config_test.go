package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const memoryConfig = `
server:
  port: 9090
  allowed_origins: ["https://desk.example.com"]
sheets:
  driver: memory
upload:
  type: mock
  mock_dir: /tmp/photos
pricing:
  late_fee_per_increment: 600
  bike_plan_hours:
    Sunset: 3
`

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, memoryConfig))
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, []string{"https://desk.example.com"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, "0 */5 * * * *", cfg.Scheduler.FlagLateRentals)
		assert.Equal(t, "Asia/Tokyo", cfg.Export.TimeZone)
		assert.Equal(t, int64(10), cfg.Server.MaxBodyMB)
		assert.Equal(t, ":9090", cfg.GetServerAddress())
		assert.NotNil(t, cfg.ExportLocation())
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "7000")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("NOTIFICATION_RECIPIENTS", "ops@example.com, lead@example.com")
		t.Setenv("PHOTO_STORAGE_TYPE", "s3")
		t.Setenv("S3_BUCKET", "id-photos")

		cfg, err := Load(writeConfig(t, memoryConfig))
		require.NoError(t, err)
		assert.Equal(t, 7000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, []string{"ops@example.com", "lead@example.com"}, cfg.Notification.Recipients)

		sc := cfg.StorageConfig()
		assert.Equal(t, "s3", sc.Type)
		assert.Equal(t, "id-photos", sc.S3Bucket)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("Bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [1, 2"))
		assert.ErrorContains(t, err, "failed to parse config file")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{
			Sheets: SheetsConfig{Driver: "memory"},
			Upload: UploadConfig{Type: "mock"},
		}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Valid", func(c *Config) {}, ""},
		{"Google driver needs a spreadsheet", func(c *Config) { c.Sheets.Driver = "google" }, "spreadsheet id is required"},
		{"Google driver needs a key", func(c *Config) {
			c.Sheets.Driver = "google"
			c.Sheets.SpreadsheetID = "sheet"
		}, "service account key is required"},
		{"Unknown driver", func(c *Config) { c.Sheets.Driver = "excel" }, "unknown sheets driver"},
		{"Apps script needs a url", func(c *Config) { c.Upload.Type = "apps_script" }, "web app url is required"},
		{"Unknown upload", func(c *Config) { c.Upload.Type = "ftp" }, "unknown upload type"},
		{"Auth needs a domain", func(c *Config) { c.Auth.Enabled = true }, "allowed email domain"},
		{"Auth needs a long secret", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.AllowedEmailDomain = "example.com"
			c.Auth.SessionSecret = "short"
		}, "at least 32 characters"},
		{"Redis needs an address", func(c *Config) { c.Redis.Enabled = true }, "redis addr is required"},
		{"Bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"Bad time zone", func(c *Config) { c.Export.TimeZone = "Mars/Olympus" }, "invalid export time zone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLockTTL(t *testing.T) {
	t.Run("Derived from store and upload timeouts", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, memoryConfig))
		require.NoError(t, err)
		assert.Equal(t, 60*time.Second, cfg.LockTTL())
	})

	t.Run("Short TTL is raised to the critical section", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, memoryConfig+"redis:\n  lock_ttl_seconds: 30\n"))
		require.NoError(t, err)
		assert.Equal(t, 60*time.Second, cfg.LockTTL())
	})

	t.Run("Longer TTL is kept", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, memoryConfig+"redis:\n  lock_ttl_seconds: 300\n"))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.LockTTL())
	})

	t.Run("Follows slower uploads", func(t *testing.T) {
		cfg := &Config{}
		cfg.Sheets.TimeoutSeconds = 10
		cfg.Upload.TimeoutSeconds = 90
		assert.Equal(t, 120*time.Second, cfg.LockTTL())
	})
}

func TestPricingRules(t *testing.T) {
	c := &Config{Pricing: PricingConfig{LateFeePerIncrement: 600, BikePlanHours: map[string]float64{"Sunset": 3}}}
	p := c.PricingRules()
	assert.Equal(t, 600, p.LateFeePerIncrement)
	assert.Equal(t, 30, p.LateFeeIncrementMinutes)
	assert.Equal(t, 3.0, p.BikePlanHours["sunset"])
	assert.Equal(t, 2.0, p.BikePlanHours["2h"])
}

func TestGetSecurityLevel(t *testing.T) {
	tests := []struct {
		method, path string
		want         SecurityLevel
	}{
		{"POST", "/api/rentals", SecurityPublic},
		{"GET", "/api/rentals", SecurityPublic},
		{"DELETE", "/api/rentals", SecuritySession},
		{"GET", "/api/rentals/history", SecuritySession},
		{"POST", "/api/checkin", SecurityPublic},
		{"GET", "/api/staff", SecurityPublic},
		{"PATCH", "/api/staff", SecuritySession},
		{"GET", "/api/export/onsen", SecuritySession},
		{"GET", "/admin/floor", SecuritySession},
		{"GET", "/uploads/mock-1.jpg", SecurityPublic},
		{"GET", "/unknown", SecuritySession},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSecurityLevel(tt.method, tt.path))
		})
	}
}
