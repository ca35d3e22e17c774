package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/healthtracker/backend/internal/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "health-tracker-api", cfg.JWTIssuer)
				assert.Equal(t, "health-tracker-app", cfg.JWTAudience)
				assert.Equal(t, 30*time.Minute, cfg.AccessTokenExpiration)
				assert.Equal(t, 720*time.Hour, cfg.RefreshTokenExpiration)
				assert.Equal(t, 2*time.Second, cfg.RevocationCheckTimeout)
				assert.Equal(t, 100000, cfg.EncryptionIterations)
				assert.True(t, cfg.RateLimitEnabled)
				assert.Equal(t, 5, cfg.RateLimitCapacity)
				assert.InDelta(t, 5.0/60.0, cfg.RateLimitRefillPerSec, 1e-9)
			},
		},
		{
			name: "load custom token configuration",
			envVars: map[string]string{
				"JWT_ISSUER":                      "custom-issuer",
				"JWT_AUDIENCE":                    "custom-audience",
				"ACCESS_TOKEN_EXPIRATION_MINUTES": "15",
				"REFRESH_TOKEN_EXPIRATION_HOURS":  "168",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "custom-issuer", cfg.JWTIssuer)
				assert.Equal(t, "custom-audience", cfg.JWTAudience)
				assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiration)
				assert.Equal(t, 168*time.Hour, cfg.RefreshTokenExpiration)
			},
		},
		{
			name: "load custom encryption configuration",
			envVars: map[string]string{
				"ENCRYPTION_SECRET":            "custom-secret",
				"ENCRYPTION_SALT":              "custom-salt",
				"ENCRYPTION_PBKDF2_ITERATIONS": "200000",
				"KMS_KEY_URI":                  "base64key://",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "custom-secret", cfg.EncryptionSecret)
				assert.Equal(t, "custom-salt", cfg.EncryptionSalt)
				assert.Equal(t, 200000, cfg.EncryptionIterations)
				assert.Equal(t, "base64key://", cfg.KMSKeyURI)
			},
		},
		{
			name: "load custom rate limit configuration",
			envVars: map[string]string{
				"RATE_LIMIT_ENABLED":        "false",
				"RATE_LIMIT_CAPACITY":       "10",
				"RATE_LIMIT_REFILL_PER_SEC": "0.5",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.RateLimitEnabled)
				assert.Equal(t, 10, cfg.RateLimitCapacity)
				assert.InDelta(t, 0.5, cfg.RateLimitRefillPerSec, 1e-9)
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "debug", cfg.GetGinMode())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			// Load configuration
			cfg := Load()

			// Validate
			tt.validate(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSigningSecret:     strings.Repeat("s", 32),
			JWTIssuer:            "health-tracker-api",
			JWTAudience:          "health-tracker-app",
			EncryptionSecret:     strings.Repeat("e", 32),
			EncryptionSalt:       "per-deployment-salt",
			EncryptionIterations: 100000,
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid configuration",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing signing secret",
			mutate:  func(cfg *Config) { cfg.JWTSigningSecret = "" },
			wantErr: "JWT_SIGNING_SECRET",
		},
		{
			name:    "short signing secret",
			mutate:  func(cfg *Config) { cfg.JWTSigningSecret = "too-short" },
			wantErr: "JWT_SIGNING_SECRET",
		},
		{
			name:    "short encryption secret",
			mutate:  func(cfg *Config) { cfg.EncryptionSecret = "too-short" },
			wantErr: "ENCRYPTION_SECRET",
		},
		{
			name: "signing secret equals encryption secret",
			mutate: func(cfg *Config) {
				cfg.JWTSigningSecret = strings.Repeat("x", 40)
				cfg.EncryptionSecret = strings.Repeat("x", 40)
			},
			wantErr: "must be different",
		},
		{
			name:    "missing encryption salt",
			mutate:  func(cfg *Config) { cfg.EncryptionSalt = "" },
			wantErr: "ENCRYPTION_SALT",
		},
		{
			name:    "missing issuer",
			mutate:  func(cfg *Config) { cfg.JWTIssuer = "" },
			wantErr: "JWT_ISSUER",
		},
		{
			name:    "missing audience",
			mutate:  func(cfg *Config) { cfg.JWTAudience = "" },
			wantErr: "JWT_AUDIENCE",
		},
		{
			name:    "iteration count too low",
			mutate:  func(cfg *Config) { cfg.EncryptionIterations = 1000 },
			wantErr: "ENCRYPTION_PBKDF2_ITERATIONS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
