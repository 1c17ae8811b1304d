// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package bridge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cadence/internal/client"
	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/session"
	"github.com/tomtom215/cadence/internal/strategy"
)

//nolint:gochecknoinits // quiet logs for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

// stubBackend serves the calls the bridge triggers. Unused client.Backend
// methods panic through the nil embedded interface.
type stubBackend struct {
	client.Backend

	mu         sync.Mutex
	analyzeErr error
	lastTopK   int
	records    map[models.Kind][]models.Record
}

func newStubBackend() *stubBackend {
	return &stubBackend{records: map[models.Kind][]models.Record{
		models.KindAnalysis: {},
		models.KindGeneration: {
			&models.GenerationRecord{ID: 7, Prompt: "主题：夏天", GeneratedLyrics: "蝉鸣声里", CreatedAt: "2026-06-01T10:00:00"},
			&models.GenerationRecord{ID: 8, Prompt: "主题：冬天", GeneratedLyrics: "雪落无声"},
		},
		models.KindRecommendation: {},
	}}
}

func (b *stubBackend) Analyze(_ context.Context, lyrics string) (*models.AnalysisResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.analyzeErr != nil {
		return nil, b.analyzeErr
	}
	return &models.AnalysisResult{
		Summary:   lyrics,
		Sentiment: &models.SentimentResult{OverallTone: "积极", OverallScore: 0.75},
	}, nil
}

func (b *stubBackend) GenerateByTheme(_ context.Context, req strategy.ByTheme) (*models.GenerationResult, error) {
	return &models.GenerationResult{Lyrics: "关于" + req.Theme}, nil
}

func (b *stubBackend) GenerateByContext(_ context.Context, _ strategy.ByContext) (*models.GenerationResult, error) {
	return &models.GenerationResult{NextLine: "下一句"}, nil
}

func (b *stubBackend) GenerateFullSong(_ context.Context, req strategy.FullSong) (*models.GenerationResult, error) {
	return &models.GenerationResult{Lyrics: req.Style}, nil
}

func (b *stubBackend) Recommend(_ context.Context, lyrics string, topK int) (*models.RecommendationResult, error) {
	b.mu.Lock()
	b.lastTopK = topK
	b.mu.Unlock()
	return &models.RecommendationResult{QueryLyrics: lyrics}, nil
}

func (b *stubBackend) History(_ context.Context, kind models.Kind, _ int) ([]models.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Record(nil), b.records[kind]...), nil
}

func (b *stubBackend) HistoryDetail(_ context.Context, kind models.Kind, id int64) (models.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.records[kind] {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return nil, &client.BackendError{Endpoint: "history/detail", Status: http.StatusNotFound, Message: "记录不存在"}
}

func (b *stubBackend) DeleteHistory(_ context.Context, kind models.Kind, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.records[kind][:0:0]
	for _, r := range b.records[kind] {
		if r.RecordID() != id {
			kept = append(kept, r)
		}
	}
	b.records[kind] = kept
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Generation: config.GenerationConfig{
			DefaultLength: 16,
			MinLength:     4,
			MaxLength:     100,
			DefaultStyle:  "流行",
			DefaultTheme:  "通用",
			ConvertStyle:  "流行",
		},
		History:        config.HistoryConfig{Limit: 20, DetailCacheSize: 4, DetailCacheTTL: time.Minute},
		Recommendation: config.RecommendationConfig{TopK: 5},
		Bridge: config.BridgeConfig{
			Host:        "127.0.0.1",
			Port:        5173,
			CORSOrigins: []string{"http://localhost:3000"},
			RateLimit:   100,
			RateWindow:  time.Minute,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T, backend *stubBackend, cfg *config.Config) (http.Handler, *session.Session) {
	t.Helper()
	sess := session.New(backend, cfg, nil)
	t.Cleanup(sess.Close)
	return NewServer(sess, nil, &cfg.Bridge).Handler(), sess
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, newStubBackend(), testConfig())
	w, env := do(t, h, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, env = %+v", w.Code, env)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestAnalyzeThenCharts(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, newStubBackend(), testConfig())

	w, env := do(t, h, http.MethodGet, "/api/analysis/charts", "")
	if w.Code != http.StatusNotFound || env.Success {
		t.Fatalf("charts before analysis: status = %d, env = %+v", w.Code, env)
	}

	w, env = do(t, h, http.MethodPost, "/api/analyze", `{"lyrics":"风吹过麦田"}`)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("analyze: status = %d, env = %+v", w.Code, env)
	}
	var res models.AnalysisResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if res.Summary != "风吹过麦田" {
		t.Errorf("summary = %q", res.Summary)
	}

	w, env = do(t, h, http.MethodGet, "/api/analysis/charts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("charts: status = %d", w.Code)
	}
	if !strings.Contains(string(env.Data), "积极") {
		t.Errorf("charts data = %s, want sentiment tone", env.Data)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		backendErr error
		wantStatus int
		wantError  string
	}{
		{"blank lyrics", `{"lyrics":"  "}`, nil, http.StatusBadRequest, ""},
		{"malformed body", `{"lyrics":`, nil, http.StatusBadRequest, "invalid request body"},
		{
			"backend message passed through", `{"lyrics":"歌"}`,
			&client.BackendError{Endpoint: "analysis/analyze", Status: 500, Message: "模型加载失败"},
			http.StatusBadGateway, "模型加载失败",
		},
		{"circuit open", `{"lyrics":"歌"}`, client.ErrCircuitOpen, http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := newStubBackend()
			backend.analyzeErr = tt.backendErr
			h, _ := newTestServer(t, backend, testConfig())

			w, env := do(t, h, http.MethodPost, "/api/analyze", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if env.Success || env.Error == "" {
				t.Errorf("env = %+v, want failure with message", env)
			}
			if tt.wantError != "" && env.Error != tt.wantError {
				t.Errorf("error = %q, want %q", env.Error, tt.wantError)
			}
		})
	}
}

func TestGenerateResolvesIntent(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, newStubBackend(), testConfig())
	w, env := do(t, h, http.MethodPost, "/api/generate", `{"theme":"爱情"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var gen struct {
		Strategy string                   `json:"strategy"`
		Result   *models.GenerationResult `json:"result"`
	}
	if err := json.Unmarshal(env.Data, &gen); err != nil {
		t.Fatalf("decode generation: %v", err)
	}
	if gen.Result == nil || gen.Result.Lyrics != "关于爱情" {
		t.Errorf("generation = %+v", gen)
	}
}

func TestRecommendDefaultsTopK(t *testing.T) {
	t.Parallel()

	backend := newStubBackend()
	h, _ := newTestServer(t, backend, testConfig())
	w, _ := do(t, h, http.MethodPost, "/api/recommend", `{"lyrics":"夜空中最亮的星"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.lastTopK != 5 {
		t.Errorf("top_k = %d, want configured 5", backend.lastTopK)
	}
}

func TestHistoryRoutes(t *testing.T) {
	t.Parallel()

	h, sess := newTestServer(t, newStubBackend(), testConfig())

	w, env := do(t, h, http.MethodPost, "/api/history/generation/refresh?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d, body %s", w.Code, w.Body.String())
	}
	var list struct {
		State   string            `json:"state"`
		Records []json.RawMessage `json:"records"`
		Limit   int               `json:"limit"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.State != "loaded" || len(list.Records) != 2 || list.Limit != 10 {
		t.Errorf("list = %+v", list)
	}

	w, _ = do(t, h, http.MethodGet, "/api/history/generation/7?format=text", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "蝉鸣声里") {
		t.Fatalf("detail text: status = %d, body %q", w.Code, w.Body.String())
	}

	w, env = do(t, h, http.MethodGet, "/api/history/generation/99", "")
	if w.Code != http.StatusNotFound || env.Error != "记录不存在" {
		t.Errorf("missing detail: status = %d, env = %+v", w.Code, env)
	}

	w, _ = do(t, h, http.MethodDelete, "/api/history/generation/7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body %s", w.Code, w.Body.String())
	}
	if got := sess.Store().List(models.KindGeneration); got.Contains(7) || len(got.Records) != 1 {
		t.Errorf("list after delete = %+v", got)
	}
	if sess.Store().Detail() != nil {
		t.Error("deleting the open record should close the detail view")
	}

	w, _ = do(t, h, http.MethodGet, "/api/history/generation", "")
	if w.Code != http.StatusOK {
		t.Errorf("list: status = %d", w.Code)
	}

	w, _ = do(t, h, http.MethodGet, "/api/snapshot", "")
	if w.Code != http.StatusOK {
		t.Errorf("snapshot: status = %d", w.Code)
	}
}

func TestHistoryParamValidation(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, newStubBackend(), testConfig())
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/history/lyrics"},
		{http.MethodGet, "/api/history/analysis/abc"},
		{http.MethodGet, "/api/history/analysis/0"},
		{http.MethodPost, "/api/history/analysis/refresh?limit=-3"},
	}
	for _, tt := range tests {
		w, env := do(t, h, tt.method, tt.path, "")
		if w.Code != http.StatusBadRequest || env.Success {
			t.Errorf("%s %s: status = %d, env = %+v", tt.method, tt.path, w.Code, env)
		}
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Bridge.RateLimit = 1
	h, _ := newTestServer(t, newStubBackend(), cfg)

	if w, _ := do(t, h, http.MethodPost, "/api/analyze", `{"lyrics":"一"}`); w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", w.Code)
	}
	w, env := do(t, h, http.MethodPost, "/api/analyze", `{"lyrics":"二"}`)
	if w.Code != http.StatusTooManyRequests || env.Success {
		t.Errorf("second request: status = %d, env = %+v", w.Code, env)
	}

	// Reads are not limited.
	if w, _ := do(t, h, http.MethodGet, "/api/snapshot", ""); w.Code != http.StatusOK {
		t.Errorf("snapshot after limit: status = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, newStubBackend(), testConfig())
	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestWebSocketUnavailableWithoutHub(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, newStubBackend(), testConfig())
	w, env := do(t, h, http.MethodGet, "/ws", "")
	if w.Code != http.StatusServiceUnavailable || env.Success {
		t.Errorf("status = %d, env = %+v", w.Code, env)
	}
}
