// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package bridge

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cadence/internal/client"
	"github.com/tomtom215/cadence/internal/history"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/session"
	"github.com/tomtom215/cadence/internal/validation"
)

// maxRequestBody caps request bodies. Lyrics are short.
const maxRequestBody = 1 << 20

type lyricsRequest struct {
	Lyrics string `json:"lyrics"`
}

type recommendRequest struct {
	Lyrics string `json:"lyrics"`
	TopK   int    `json:"top_k"`
}

// Health answers liveness checks.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.Response{Success: true, Data: map[string]any{
		"status":  "ok",
		"clients": s.clientCount(),
	}})
}

// Snapshot returns the whole session state.
func (s *Server) Snapshot(w http.ResponseWriter, r *http.Request) {
	respondData(w, s.sess.Snapshot())
}

// AnalysisCharts returns chart descriptors for the last analysis.
func (s *Server) AnalysisCharts(w http.ResponseWriter, r *http.Request) {
	charts, ok := s.sess.Charts()
	if !ok {
		respondError(w, http.StatusNotFound, "no analysis result yet", nil)
		return
	}
	respondData(w, charts)
}

// HistoryList returns the current list state for one kind without reloading.
func (s *Server) HistoryList(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	respondData(w, s.sess.Store().List(kind))
}

// HistoryRefresh reloads one list and returns its new state.
func (s *Server) HistoryRefresh(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	if _, err := s.sess.RefreshHistory(r.Context(), kind, limit); err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, s.sess.Store().List(kind))
}

// HistoryDetail opens one record. With ?format=text the decoded record is
// rendered as plain text.
func (s *Server) HistoryDetail(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := recordParams(w, r)
	if !ok {
		return
	}

	detail, err := s.sess.OpenDetail(r.Context(), kind, id)
	if err != nil {
		respondFailure(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		text, err := s.renderer.Detail(detail)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to render record", err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(text))
		return
	}
	respondData(w, detail)
}

// HistoryDelete deletes one record and returns the reconciled list.
func (s *Server) HistoryDelete(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := recordParams(w, r)
	if !ok {
		return
	}
	if err := s.sess.DeleteHistory(r.Context(), kind, id); err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, s.sess.Store().List(kind))
}

// Analyze runs a full analysis.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req lyricsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.sess.Analyze(r.Context(), req.Lyrics)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, res)
}

// Generate resolves an intent and generates lyrics.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var intent models.Intent
	if !decodeBody(w, r, &intent) {
		return
	}
	gen, err := s.sess.Generate(r.Context(), intent)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, gen)
}

// Recommend finds similar songs.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.sess.Recommend(r.Context(), req.Lyrics, req.TopK)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, res)
}

// WebSocket upgrades the connection and registers it with the hub.
func (s *Server) WebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "event stream unavailable", nil)
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := NewClient(s.hub, conn)
	select {
	case s.hub.Register <- c:
		c.Start()
	case <-r.Context().Done():
		_ = conn.Close()
	}
}

func (s *Server) clientCount() int {
	if s.hub == nil {
		return 0
	}
	return s.hub.ClientCount()
}

func kindParam(w http.ResponseWriter, r *http.Request) (models.Kind, bool) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return "", false
	}
	return kind, true
}

func recordParams(w http.ResponseWriter, r *http.Request) (models.Kind, int64, bool) {
	kind, ok := kindParam(w, r)
	if !ok {
		return "", 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "record id must be a positive integer", nil)
		return "", 0, false
	}
	return kind, id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", nil)
		return false
	}
	return true
}

func respondData(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, &models.Response{Success: true, Data: data})
}

func respondJSON(w http.ResponseWriter, status int, response *models.Response) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.Warn().Err(err).Int("status", status).Msg("Bridge request failed")
	}
	respondJSON(w, status, &models.Response{Success: false, Error: message})
}

// respondFailure maps a session error onto a status code. Backend messages
// are passed through verbatim.
func respondFailure(w http.ResponseWriter, err error) {
	var verr *validation.RequestValidationError
	var berr *client.BackendError

	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error(), nil)
	case errors.Is(err, history.ErrUnknownKind):
		respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, session.ErrBusy), errors.Is(err, history.ErrSuperseded):
		respondError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, session.ErrClosed), errors.Is(err, client.ErrCircuitOpen):
		respondError(w, http.StatusServiceUnavailable, err.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "request canceled", nil)
	case errors.As(err, &berr):
		status := http.StatusBadGateway
		if berr.Status == http.StatusNotFound {
			status = http.StatusNotFound
		}
		msg, ok := client.UserMessage(err)
		if !ok {
			msg = "backend request failed"
		}
		respondError(w, status, msg, err)
	default:
		respondError(w, http.StatusInternalServerError, "internal error", err)
	}
}
