// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package bridge

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/history"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/middleware"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/session"
	"github.com/tomtom215/cadence/internal/visualize"
)

// Session is the part of *session.Session the bridge serves.
type Session interface {
	Snapshot() session.Snapshot
	Store() *history.Store
	Charts() (visualize.ChartSet, bool)

	Analyze(ctx context.Context, lyrics string) (*models.AnalysisResult, error)
	Generate(ctx context.Context, intent models.Intent) (*session.Generation, error)
	Recommend(ctx context.Context, lyrics string, topK int) (*models.RecommendationResult, error)

	RefreshHistory(ctx context.Context, kind models.Kind, limit int) ([]models.Record, error)
	OpenDetail(ctx context.Context, kind models.Kind, id int64) (history.Detail, error)
	DeleteHistory(ctx context.Context, kind models.Kind, id int64) error
}

// Server routes bridge requests to a session.
type Server struct {
	sess     Session
	hub      *Hub
	renderer *visualize.Renderer
	cfg      *config.BridgeConfig
}

// NewServer creates a Server. hub may be nil, in which case /ws answers 503.
func NewServer(sess Session, hub *Hub, cfg *config.BridgeConfig) *Server {
	return &Server{
		sess:     sess,
		hub:      hub,
		renderer: visualize.NewRenderer(),
		cfg:      cfg,
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.WebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.Snapshot)
		r.Get("/analysis/charts", s.AnalysisCharts)
		r.Get("/history/{kind}", s.HistoryList)
		r.Get("/history/{kind}/{id}", s.HistoryDetail)

		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(
				s.cfg.RateLimit,
				s.cfg.RateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					respondError(w, http.StatusTooManyRequests, "too many requests", nil)
				}),
			))

			r.Post("/history/{kind}/refresh", s.HistoryRefresh)
			r.Delete("/history/{kind}/{id}", s.HistoryDelete)
			r.Post("/analyze", s.Analyze)
			r.Post("/generate", s.Generate)
			r.Post("/recommend", s.Recommend)
		})
	})

	return r
}

// NewHTTPServer wraps handler in an http.Server listening on cfg.Addr().
func NewHTTPServer(cfg *config.BridgeConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      s.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkOrigin admits configured origins. Requests without an Origin come
// from local non-browser renderers and are admitted as well.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}
