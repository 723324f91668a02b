// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pagesurf/pagesurf/logger"
)

// Config controls the decode pipeline and surface rendering for one
// viewing session.
type Config struct {
	MaxConcurrentDecodes int           `validate:"min=1,max=16"`
	DecodeTimeout        time.Duration `validate:"required"`
	MaxRetries           int           `validate:"min=0,max=3"`
	ThumbnailDivisor     int           `validate:"min=1,max=64"`
	DebugOn              bool
	Logger               logger.LogFunc
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentDecodes: 4,
		DecodeTimeout:        5 * time.Second,
		MaxRetries:           2,
		ThumbnailDivisor:     16,
		DebugOn:              false,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	return validate.Struct(cfg)
}
