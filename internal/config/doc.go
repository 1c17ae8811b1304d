// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package config loads Cadence client configuration with Koanf v2.

Sources are layered (highest priority wins):

  - Environment variables (API_URL, USER_ID, HISTORY_LIMIT, LOG_LEVEL, ...)
  - YAML config file (config.yaml, /etc/cadence/config.yaml or CONFIG_PATH)
  - Built-in defaults

Example config.yaml:

	backend:
	  url: http://lyrics.internal:5000/api
	  user_id: 42
	history:
	  limit: 50
	logging:
	  level: debug

The loaded Config is validated with struct tags through internal/validation.
*/
package config
