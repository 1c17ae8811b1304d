// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/cadence/internal/validation"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateBackendURL(); err != nil {
		return err
	}

	return c.validateGeneration()
}

// validateBackendURL rejects non-HTTP schemes and trailing slashes that would
// produce double slashes when endpoint paths are appended.
func (c *Config) validateBackendURL() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("API_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_URL must use http or https, got %q", u.Scheme)
	}
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")
	return nil
}

// validateGeneration keeps the default length inside the accepted range.
func (c *Config) validateGeneration() error {
	g := c.Generation
	if g.DefaultLength < g.MinLength || g.DefaultLength > g.MaxLength {
		return fmt.Errorf("generation.default_length %d must be within [%d, %d]",
			g.DefaultLength, g.MinLength, g.MaxLength)
	}
	return nil
}
