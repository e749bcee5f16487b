package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:            "8571",
		JWTSecret:       "secure-secret-at-least-32-chars-long",
		Env:             "test",
		DBDriver:        "sqlite",
		SQLitePath:      ":memory:",
		MinVotingPeriod: 24 * time.Hour,
		QuorumPercent:   51,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"valid postgres", func(c *Config) { c.DBDriver = "postgres" }, false},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, true},
		{"zero voting period", func(c *Config) { c.MinVotingPeriod = 0 }, true},
		{"quorum over 100", func(c *Config) { c.QuorumPercent = 150 }, true},
		{"quorum 100 allowed", func(c *Config) { c.QuorumPercent = 100 }, false},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "dev-secret-change-in-production"
		}, true},
		{"production ssl disabled", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "postgres"
			c.DBSSLMode = "disable"
		}, true},
		{"production ssl required", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "postgres"
			c.DBSSLMode = "require"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
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

func TestIsProduction(t *testing.T) {
	assert.True(t, (&Config{Env: "production"}).IsProduction())
	assert.True(t, (&Config{Env: "prod"}).IsProduction())
	assert.False(t, (&Config{Env: "development"}).IsProduction())
}
