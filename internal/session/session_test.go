// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cadence/internal/client"
	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/strategy"
	"github.com/tomtom215/cadence/internal/validation"
)

// fakeBackend implements client.Backend. gate, when set before use, blocks
// Analyze until it is closed or the context ends.
type fakeBackend struct {
	calls atomic.Int32
	gate  chan struct{}
	err   error

	mu          sync.Mutex
	lastRequest strategy.Request
	lastTarget  string
	records     map[models.Kind][]models.Record
}

var _ client.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{records: map[models.Kind][]models.Record{
		models.KindAnalysis:       {&models.AnalysisRecord{ID: 1}},
		models.KindGeneration:     {&models.GenerationRecord{ID: 2}, &models.GenerationRecord{ID: 3}},
		models.KindRecommendation: {},
	}}
}

func (f *fakeBackend) wait(_ context.Context) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeBackend) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeBackend) Analyze(ctx context.Context, lyrics string) (*models.AnalysisResult, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return &models.AnalysisResult{
		Summary:   "summary of " + lyrics,
		Sentiment: &models.SentimentResult{OverallTone: "积极", OverallScore: 0.8},
	}, nil
}

func (f *fakeBackend) AnalyzeSentiment(ctx context.Context, _ string) (*models.SentimentResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return &models.SentimentResult{OverallTone: "中性"}, nil
}

func (f *fakeBackend) AnalyzeTheme(ctx context.Context, _ string) (*models.ThemeResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return &models.ThemeResult{}, nil
}

func (f *fakeBackend) AnalyzeRhythm(ctx context.Context, _ string) (*models.RhythmResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return &models.RhythmResult{}, nil
}

func (f *fakeBackend) generated(ctx context.Context, req strategy.Request) (*models.GenerationResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastRequest = req
	f.mu.Unlock()
	return &models.GenerationResult{Lyrics: "生成的歌词"}, nil
}

func (f *fakeBackend) GenerateByTheme(ctx context.Context, req strategy.ByTheme) (*models.GenerationResult, error) {
	return f.generated(ctx, req)
}

func (f *fakeBackend) GenerateByContext(ctx context.Context, req strategy.ByContext) (*models.GenerationResult, error) {
	return f.generated(ctx, req)
}

func (f *fakeBackend) GenerateFullSong(ctx context.Context, req strategy.FullSong) (*models.GenerationResult, error) {
	return f.generated(ctx, req)
}

func (f *fakeBackend) ConvertStyle(ctx context.Context, lyrics, targetStyle string) (*models.StyleConversion, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastTarget = targetStyle
	f.mu.Unlock()
	return &models.StyleConversion{Original: lyrics, Converted: "converted", TargetStyle: targetStyle}, nil
}

func (f *fakeBackend) ContinueConversation(ctx context.Context, _, _ string) (*models.GenerationResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return &models.GenerationResult{ImprovedLyrics: "改进后"}, nil
}

func (f *fakeBackend) OptimizeRhyme(ctx context.Context, line, targetRhyme string) (*models.RhymeSuggestions, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return &models.RhymeSuggestions{Original: line, TargetRhyme: targetRhyme, Suggestions: []string{"a"}}, nil
}

func (f *fakeBackend) Recommend(ctx context.Context, lyrics string, _ int) (*models.RecommendationResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return &models.RecommendationResult{QueryLyrics: lyrics}, nil
}

func (f *fakeBackend) KnowledgeGraph(ctx context.Context, _ []models.Song) (*models.KnowledgeGraph, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return &models.KnowledgeGraph{}, nil
}

func (f *fakeBackend) Preferences(ctx context.Context) (models.Preferences, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return models.Preferences{"style": "民谣"}, nil
}

func (f *fakeBackend) UpdatePreferences(ctx context.Context, _ models.Preferences) error {
	return f.wait(ctx)
}

func (f *fakeBackend) History(_ context.Context, kind models.Kind, _ int) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Record(nil), f.records[kind]...), nil
}

func (f *fakeBackend) HistoryDetail(_ context.Context, kind models.Kind, id int64) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records[kind] {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return nil, &client.BackendError{Endpoint: "history/detail", Status: 404, Message: "记录不存在"}
}

func (f *fakeBackend) DeleteHistory(_ context.Context, kind models.Kind, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.Record
	for _, r := range f.records[kind] {
		if r.RecordID() != id {
			kept = append(kept, r)
		}
	}
	f.records[kind] = kept
	return nil
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []events.Notice
}

func (r *noticeRecorder) Publish(topic string, payload any) error {
	if n, ok := payload.(events.Notice); ok && topic == events.TopicNotice {
		r.mu.Lock()
		r.notices = append(r.notices, n)
		r.mu.Unlock()
	}
	return nil
}

func (r *noticeRecorder) last() events.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return events.Notice{}
	}
	return r.notices[len(r.notices)-1]
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
	}
}

func newTestSession(t *testing.T, backend *fakeBackend) (*Session, *noticeRecorder) {
	t.Helper()
	rec := &noticeRecorder{}
	s := New(backend, testConfig(), rec)
	t.Cleanup(s.Close)
	return s, rec
}

func TestAnalyzeRejectsBlankLyricsLocally(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	s, rec := newTestSession(t, backend)

	for _, lyrics := range []string{"", "   ", "\n\t"} {
		_, err := s.Analyze(context.Background(), lyrics)
		var verr *validation.RequestValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Analyze(%q) error = %v, want validation error", lyrics, err)
		}
	}
	if n := backend.calls.Load(); n != 0 {
		t.Errorf("backend called %d times for invalid input", n)
	}
	if got := rec.last(); got.Level != LevelWarning || got.Message != "请输入歌词" {
		t.Errorf("notice = %+v", got)
	}
}

func TestAnalyzeStoresResultAndCharts(t *testing.T) {
	t.Parallel()

	s, rec := newTestSession(t, newFakeBackend())

	res, err := s.Analyze(context.Background(), "月亮代表我的心")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.Sentiment.OverallTone != "积极" {
		t.Errorf("result = %+v", res)
	}

	charts, ok := s.Charts()
	if !ok || !charts.Sentiment.Present || len(charts.Categories) != 3 {
		t.Errorf("Charts() = %+v, %v", charts, ok)
	}
	if got := rec.last(); got.Level != LevelSuccess || got.Message != "分析完成！" {
		t.Errorf("notice = %+v", got)
	}
	if snap := s.Snapshot(); snap.Analysis != res || len(snap.Busy) != 0 {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestFailureNoticeKeepsPriorState(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	s, rec := newTestSession(t, backend)
	ctx := context.Background()

	first, err := s.Analyze(ctx, "first")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	backend.setErr(&client.BackendError{Endpoint: "analysis/analyze", Status: 500, Message: "模型加载失败"})
	if _, err := s.Analyze(ctx, "second"); err == nil {
		t.Fatal("Analyze() succeeded, want error")
	}

	got := rec.last()
	if got.Level != LevelError || got.Message != "模型加载失败" || got.Operation != string(OpAnalyze) {
		t.Errorf("notice = %+v", got)
	}
	if s.Snapshot().Analysis != first {
		t.Error("failure replaced the previous analysis")
	}

	backend.setErr(errors.New("connection refused"))
	_, _ = s.Analyze(ctx, "third")
	if got := rec.last(); got.Message != "analyze failed" {
		t.Errorf("generic notice = %+v", got)
	}
}

func TestBusyGuardRejectsReentry(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.gate = make(chan struct{})
	s, _ := newTestSession(t, backend)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Analyze(context.Background(), "slow")
		errc <- err
	}()

	deadline := time.After(2 * time.Second)
	for !s.Busy(OpAnalyze) {
		select {
		case <-deadline:
			t.Fatal("analyze never became busy")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := s.Analyze(context.Background(), "again"); !errors.Is(err, ErrBusy) {
		t.Errorf("second Analyze() error = %v, want ErrBusy", err)
	}
	// Other operations are independent.
	if _, err := s.Recommend(context.Background(), "lyrics", 0); err != nil {
		t.Errorf("Recommend() while analyze busy: %v", err)
	}

	close(backend.gate)
	if err := <-errc; err != nil {
		t.Errorf("first Analyze() error = %v", err)
	}
	if s.Busy(OpAnalyze) {
		t.Error("busy flag not released")
	}
	if n := backend.calls.Load(); n != 2 {
		t.Errorf("backend calls = %d, want 2 (one analyze, one recommend)", n)
	}
}

func TestCloseAbandonsInFlight(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.gate = make(chan struct{})
	s, _ := newTestSession(t, backend)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Analyze(context.Background(), "never finishes")
		errc <- err
	}()

	deadline := time.After(2 * time.Second)
	for !s.Busy(OpAnalyze) {
		select {
		case <-deadline:
			t.Fatal("analyze never became busy")
		case <-time.After(time.Millisecond):
		}
	}

	s.Close()
	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("in-flight Analyze() error = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight call not abandoned on Close")
	}

	if s.Snapshot().Analysis != nil {
		t.Error("late completion applied after Close")
	}
	if _, err := s.Recommend(context.Background(), "x", 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Recommend() after Close error = %v, want ErrClosed", err)
	}
	if !s.Closed() {
		t.Error("Closed() = false")
	}
}

func TestGenerateResolvesOneStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		intent models.Intent
		want   strategy.Request
	}{
		{
			name:   "theme only",
			intent: models.Intent{Theme: "爱情"},
			want:   strategy.ByTheme{Theme: "爱情", Length: 16},
		},
		{
			name:   "context wins",
			intent: models.Intent{ContextLines: []string{"line1", "line2"}, UseContext: true, Theme: "爱情"},
			want:   strategy.ByContext{Lines: []string{"line1", "line2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := newFakeBackend()
			s, _ := newTestSession(t, backend)

			gen, err := s.Generate(context.Background(), tt.intent)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if gen.Strategy != tt.want.Name() || gen.Text() != "生成的歌词" {
				t.Errorf("Generate() = %+v", gen)
			}
			if backend.calls.Load() != 1 {
				t.Errorf("backend calls = %d, want exactly 1", backend.calls.Load())
			}

			backend.mu.Lock()
			got := backend.lastRequest
			backend.mu.Unlock()
			if got.Name() != tt.want.Name() {
				t.Errorf("sent %s, want %s", got.Name(), tt.want.Name())
			}
			if bt, ok := tt.want.(strategy.ByTheme); ok {
				sent := got.(strategy.ByTheme)
				if sent.Theme != bt.Theme || sent.Length != bt.Length || sent.Emotion != "" {
					t.Errorf("ByTheme = %+v, want %+v", sent, bt)
				}
			}
		})
	}
}

func TestContinueUpdatesGeneration(t *testing.T) {
	t.Parallel()

	s, rec := newTestSession(t, newFakeBackend())
	ctx := context.Background()

	if _, err := s.Continue(ctx, "歌词", "  "); err == nil {
		t.Fatal("Continue() with blank feedback succeeded")
	}
	if got := rec.last(); got.Message != "请输入歌词和反馈" {
		t.Errorf("notice = %+v", got)
	}

	if _, err := s.Generate(ctx, models.Intent{}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := s.Continue(ctx, "生成的歌词", "更悲伤一点"); err != nil {
		t.Fatalf("Continue() error = %v", err)
	}
	if got := s.Snapshot().Generation.Text(); got != "改进后" {
		t.Errorf("generation text = %q, want 改进后", got)
	}
}

func TestConvertStyleDefaultsTarget(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	s, _ := newTestSession(t, backend)

	res, err := s.ConvertStyle(context.Background(), "一些歌词", "")
	if err != nil {
		t.Fatalf("ConvertStyle() error = %v", err)
	}
	if res.TargetStyle != "流行" {
		t.Errorf("TargetStyle = %q, want 流行", res.TargetStyle)
	}

	if _, err := s.ConvertStyle(context.Background(), " ", "摇滚"); err == nil {
		t.Error("ConvertStyle() with blank lyrics succeeded")
	}
}

func TestOtherOperations(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, newFakeBackend())
	ctx := context.Background()

	if _, err := s.OptimizeRhyme(ctx, "我的心", ""); err == nil {
		t.Error("OptimizeRhyme() with blank rhyme succeeded")
	}
	sug, err := s.OptimizeRhyme(ctx, "我的心", "ang")
	if err != nil || sug.TargetRhyme != "ang" {
		t.Errorf("OptimizeRhyme() = %+v, %v", sug, err)
	}

	if _, err := s.KnowledgeGraph(ctx, nil); err == nil {
		t.Error("KnowledgeGraph() with no songs succeeded")
	}
	if _, err := s.KnowledgeGraph(ctx, []models.Song{{Title: "晴天"}}); err != nil {
		t.Errorf("KnowledgeGraph() error = %v", err)
	}

	prefs, err := s.Preferences(ctx)
	if err != nil || prefs["style"] != "民谣" {
		t.Errorf("Preferences() = %v, %v", prefs, err)
	}
	if err := s.UpdatePreferences(ctx, models.Preferences{"style": "摇滚"}); err != nil {
		t.Errorf("UpdatePreferences() error = %v", err)
	}

	for _, fn := range []func() error{
		func() error { _, err := s.AnalyzeSentiment(ctx, "x"); return err },
		func() error { _, err := s.AnalyzeTheme(ctx, "x"); return err },
		func() error { _, err := s.AnalyzeRhythm(ctx, "x"); return err },
	} {
		if err := fn(); err != nil {
			t.Errorf("facet analysis error = %v", err)
		}
	}

	rec, err := s.Recommend(ctx, "雨下整夜", 0)
	if err != nil || rec.QueryLyrics != "雨下整夜" {
		t.Errorf("Recommend() = %+v, %v", rec, err)
	}
	if s.Snapshot().Recommendation != rec {
		t.Error("recommendation not stored")
	}
}

func TestHistoryOperations(t *testing.T) {
	t.Parallel()

	s, rec := newTestSession(t, newFakeBackend())
	ctx := context.Background()

	if err := s.RefreshAll(ctx, 0); err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}
	snap := s.Snapshot().History
	if len(snap.Lists[models.KindGeneration].Records) != 2 || len(snap.Lists[models.KindAnalysis].Records) != 1 {
		t.Errorf("lists after RefreshAll = %+v", snap.Lists)
	}

	d, err := s.OpenDetail(ctx, models.KindGeneration, 3)
	if err != nil || d.ID() != 3 {
		t.Fatalf("OpenDetail() = %v, %v", d, err)
	}

	if _, err := s.OpenDetail(ctx, models.KindGeneration, 99); err == nil {
		t.Error("OpenDetail(missing) succeeded")
	}
	if got := rec.last(); got.Level != LevelError || got.Message != "记录不存在" {
		t.Errorf("notice = %+v", got)
	}
	if s.Store().Detail() != d {
		t.Error("failed fetch changed the open detail")
	}

	if err := s.DeleteHistory(ctx, models.KindGeneration, 3); err != nil {
		t.Fatalf("DeleteHistory() error = %v", err)
	}
	if s.Store().List(models.KindGeneration).Contains(3) {
		t.Error("deleted record still listed")
	}
	if s.Store().Detail() != nil {
		t.Error("detail of deleted record still open")
	}
	if got := rec.last(); got.Message != "删除成功" {
		t.Errorf("notice = %+v", got)
	}
}

func TestNoticeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		notice Notice
		want   string
	}{
		{Notice{Level: LevelError, Operation: OpAnalyze, Message: "超时"}, "分析失败：超时"},
		{Notice{Level: LevelError, Operation: OpRecommend, Message: "recommend failed"}, "推荐失败"},
		{Notice{Level: LevelWarning, Operation: OpAnalyze, Message: "请输入歌词"}, "请输入歌词"},
		{Notice{Level: LevelSuccess, Operation: OpDelete, Message: "删除成功"}, "删除成功"},
		{Notice{Level: LevelError, Operation: Operation("other"), Message: "boom"}, "boom"},
	}
	for _, tt := range tests {
		if got := tt.notice.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.notice, got, tt.want)
		}
	}
}
