// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

import "github.com/goccy/go-json"

// Envelope is the response wrapper returned by every backend endpoint.
//
// Success responses carry Data; failures carry a human-readable Error that
// is shown to the user verbatim. Some mutations (delete, preference update)
// answer with Message instead of Data.
//
//	{"success": true, "data": {"summary": "..."}}
//	{"success": true, "message": "删除成功"}
//	{"error": "记录不存在"}
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Response is the envelope written by the local bridge. It mirrors the
// backend shape so renderers can treat both alike.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
