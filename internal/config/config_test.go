package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing port",
			cfg:     Config{JWTSecret: "secret"},
			wantErr: "PORT is required",
		},
		{
			name:    "missing jwt secret",
			cfg:     Config{Port: "8460"},
			wantErr: "JWT_SECRET is required",
		},
		{
			name: "development defaults pass",
			cfg: Config{
				Port:      "8460",
				Env:       "development",
				JWTSecret: "your-secret-key-change-in-production",
			},
		},
		{
			name: "production rejects default secret",
			cfg: Config{
				Port:      "8460",
				Env:       "production",
				JWTSecret: "your-secret-key-change-in-production",
			},
			wantErr: "JWT_SECRET must be changed from the default value in production",
		},
		{
			name: "production rejects short secret",
			cfg: Config{
				Port:       "8460",
				Env:        "production",
				JWTSecret:  "short",
				DBPassword: "sturdy-password",
			},
			wantErr: "JWT_SECRET must be at least 32 characters in production",
		},
		{
			name: "production rejects default db password",
			cfg: Config{
				Port:       "8460",
				Env:        "production",
				JWTSecret:  "0123456789abcdef0123456789abcdef",
				DBPassword: "password",
			},
			wantErr: "a strong DB_PASSWORD is required in production",
		},
		{
			name: "production passes with strong values",
			cfg: Config{
				Port:       "8460",
				Env:        "production",
				JWTSecret:  "0123456789abcdef0123456789abcdef",
				DBPassword: "sturdy-password",
				DBSSLMode:  "require",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
