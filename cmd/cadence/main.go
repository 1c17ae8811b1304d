// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package main is the cadence command line client.
//
// Every subcommand builds one session against the configured backend,
// runs a single operation and prints the result. `cadence serve` keeps the
// session open and exposes it over the local HTTP/WebSocket bridge.
//
// Configuration is loaded with Koanf from defaults, an optional config.yaml
// and environment variables (API_URL, USER_ID, LOG_LEVEL, ...). Logs go to
// stderr so stdout stays machine readable with --json.
package main

import (
	"os"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
