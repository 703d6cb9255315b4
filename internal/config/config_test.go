package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProductionConfig() *Config {
	return &Config{
		Env:        "production",
		Port:       "8080",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		JWTTTL:     time.Hour,
		DBDriver:   "postgres",
		DBPassword: "secure-password",
		DBSSLMode:  "require",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid production", func(*Config) {}, false},
		{"Production with default secret", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"Production with short secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Production with sqlite", func(c *Config) { c.DBDriver = "sqlite" }, true},
		{"Production with weak DB password", func(c *Config) { c.DBPassword = "password" }, true},
		{"Production with SSL disabled", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Zero token lifetime", func(c *Config) { c.JWTTTL = 0 }, true},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Development allows sqlite and weak secret", func(c *Config) {
			c.Env = "development"
			c.DBDriver = "sqlite"
			c.JWTSecret = "dev"
			c.DBSSLMode = "disable"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validProductionConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("JWT_TTL", "30m")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 30*time.Minute, c.JWTTTL)
	assert.Equal(t, "blogapi", c.JWTIssuer)
}

func TestConfig_ValidateSeedPreset(t *testing.T) {
	c := validProductionConfig()
	c.SeedPreset = "demo"
	assert.ErrorContains(t, c.Validate(), "SEED_PRESET")

	c.Env = "development"
	assert.NoError(t, c.Validate())
}
