// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		shouldErr bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				MaxConcurrentDecodes: 8,
				DecodeTimeout:        5 * time.Second,
				MaxRetries:           1,
				ThumbnailDivisor:     16,
			},
			shouldErr: false,
		},
		{
			name: "invalid MaxConcurrentDecodes (too low)",
			cfg: &Config{
				MaxConcurrentDecodes: 0,
				DecodeTimeout:        5 * time.Second,
				MaxRetries:           1,
				ThumbnailDivisor:     16,
			},
			shouldErr: true,
		},
		{
			name: "invalid MaxConcurrentDecodes (too high)",
			cfg: &Config{
				MaxConcurrentDecodes: 64,
				DecodeTimeout:        5 * time.Second,
				MaxRetries:           1,
				ThumbnailDivisor:     16,
			},
			shouldErr: true,
		},
		{
			name: "missing DecodeTimeout",
			cfg: &Config{
				MaxConcurrentDecodes: 4,
				DecodeTimeout:        0,
				MaxRetries:           1,
				ThumbnailDivisor:     16,
			},
			shouldErr: true,
		},
		{
			name: "invalid MaxRetries",
			cfg: &Config{
				MaxConcurrentDecodes: 4,
				DecodeTimeout:        5 * time.Second,
				MaxRetries:           7,
				ThumbnailDivisor:     16,
			},
			shouldErr: true,
		},
		{
			name: "invalid ThumbnailDivisor (too high)",
			cfg: &Config{
				MaxConcurrentDecodes: 4,
				DecodeTimeout:        5 * time.Second,
				MaxRetries:           1,
				ThumbnailDivisor:     128,
			},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 16, cfg.ThumbnailDivisor)
}
