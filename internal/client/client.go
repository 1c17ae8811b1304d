// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/strategy"
)

// maxErrorBodySize limits how much of a failed response is read.
const maxErrorBodySize = 64 * 1024 // 64KB

// maxBodySize bounds successful responses. Generated songs and history
// lists are far below this.
const maxBodySize = 16 << 20 // 16MB

// Backend is the full backend surface. It is implemented by Client and by
// BreakerClient, and faked in tests of the store and the session.
//
// All methods accept a context for cancellation and are safe for concurrent use.
type Backend interface {
	// Analysis
	Analyze(ctx context.Context, lyrics string) (*models.AnalysisResult, error)
	AnalyzeSentiment(ctx context.Context, lyrics string) (*models.SentimentResult, error)
	AnalyzeTheme(ctx context.Context, lyrics string) (*models.ThemeResult, error)
	AnalyzeRhythm(ctx context.Context, lyrics string) (*models.RhythmResult, error)

	// Generation
	GenerateByTheme(ctx context.Context, req strategy.ByTheme) (*models.GenerationResult, error)
	GenerateByContext(ctx context.Context, req strategy.ByContext) (*models.GenerationResult, error)
	GenerateFullSong(ctx context.Context, req strategy.FullSong) (*models.GenerationResult, error)
	ConvertStyle(ctx context.Context, lyrics, targetStyle string) (*models.StyleConversion, error)
	ContinueConversation(ctx context.Context, previousLyrics, feedback string) (*models.GenerationResult, error)
	OptimizeRhyme(ctx context.Context, line, targetRhyme string) (*models.RhymeSuggestions, error)

	// Recommendation
	Recommend(ctx context.Context, lyrics string, topK int) (*models.RecommendationResult, error)
	KnowledgeGraph(ctx context.Context, songs []models.Song) (*models.KnowledgeGraph, error)
	Preferences(ctx context.Context) (models.Preferences, error)
	UpdatePreferences(ctx context.Context, prefs models.Preferences) error

	// History
	History(ctx context.Context, kind models.Kind, limit int) ([]models.Record, error)
	HistoryDetail(ctx context.Context, kind models.Kind, id int64) (models.Record, error)
	DeleteHistory(ctx context.Context, kind models.Kind, id int64) error
}

// Client talks HTTP to the backend.
//
// Thread Safety: safe for concurrent use. Each call builds its own request.
type Client struct {
	baseURL        string
	userID         int64
	httpClient     *http.Client
	limiter        *rate.Limiter // nil disables pacing
	maxRetries     int
	retryBaseDelay time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client from the backend config section.
func New(cfg *config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:        cfg.URL,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
	if cfg.HasUser() {
		c.userID = cfg.UserID
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// userRef returns the user id to send, or nil for anonymous use.
func (c *Client) userRef() *int64 {
	if c.userID <= 0 {
		return nil
	}
	id := c.userID
	return &id
}

// call describes one backend request. endpoint is the metrics/log label
// and never contains record ids.
type call struct {
	method   string
	endpoint string
	path     string
	query    url.Values
	body     any
}

// do performs the call, unwraps the envelope and decodes data into out
// (which may be nil).
func (c *Client) do(ctx context.Context, cl call, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, cl, out)
	duration := time.Since(start)

	outcome := classify(ctx, err)
	metrics.RecordBackendRequest(cl.endpoint, outcome, duration)

	log := logging.Ctx(ctx)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", cl.endpoint).Str("outcome", outcome).Dur("duration", duration).Msg("backend call failed")
		return err
	}
	log.Debug().Str("endpoint", cl.endpoint).Dur("duration", duration).Msg("backend call")
	return nil
}

func (c *Client) doOnce(ctx context.Context, cl call, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", cl.endpoint, err)
		}
	}

	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", cl.endpoint, err)
		}
		payload = b
	}

	reqURL := c.baseURL + cl.path
	if len(cl.query) > 0 {
		reqURL += "?" + cl.query.Encode()
	}

	resp, err := c.doRequestWithRateLimit(ctx, cl, reqURL, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BackendError{
			Endpoint: cl.endpoint,
			Status:   resp.StatusCode,
			Message:  errorMessage(readBodyForError(resp.Body)),
		}
	}

	var env models.Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", cl.endpoint, err)
	}
	if !env.Success {
		return &BackendError{Endpoint: cl.endpoint, Status: resp.StatusCode, Message: env.Error}
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", cl.endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit sends the request, retrying HTTP 429 responses with
// exponential backoff (base, 2×base, 4×base...) or the server's Retry-After.
// The body is rebuilt for each attempt.
func (c *Client) doRequestWithRateLimit(ctx context.Context, cl call, reqURL string, payload []byte) (*http.Response, error) {
	requestID := logging.CorrelationIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var body io.Reader = http.NoBody
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, cl.method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s request: %w", cl.endpoint, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request failed: %w", cl.endpoint, err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		retryAfter := resp.Header.Get("Retry-After")
		msg := errorMessage(readBodyForError(resp.Body))
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			if msg == "" {
				msg = fmt.Sprintf("rate limit exceeded after %d retries", c.maxRetries)
			}
			return nil, &BackendError{Endpoint: cl.endpoint, Status: http.StatusTooManyRequests, Message: msg}
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}
		metrics.BackendRetries.WithLabelValues(cl.endpoint).Inc()

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

// readBodyForError reads at most maxErrorBodySize bytes of a failed response.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return nil
	}
	return body
}

// errorMessage extracts the envelope error string from a failed response body.
func errorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Error
}

// classify maps a call result to a metrics outcome label.
func classify(ctx context.Context, err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if errors.Is(err, context.Canceled) || (errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil) {
		return metrics.OutcomeCanceled
	}
	var be *BackendError
	if errors.As(err, &be) {
		if be.Status == http.StatusTooManyRequests {
			return metrics.OutcomeRateLimited
		}
		return metrics.OutcomeBackendErr
	}
	return metrics.OutcomeTransport
}

// Generate sends a resolved generation request to the matching endpoint.
func Generate(ctx context.Context, b Backend, req strategy.Request) (*models.GenerationResult, error) {
	switch r := req.(type) {
	case strategy.ByContext:
		return b.GenerateByContext(ctx, r)
	case strategy.FullSong:
		return b.GenerateFullSong(ctx, r)
	case strategy.ByTheme:
		return b.GenerateByTheme(ctx, r)
	default:
		return nil, ErrUnknownRequest
	}
}
