// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package client

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/strategy"
)

// breakerName labels the breaker in logs and metrics.
const breakerName = "lyrics-backend"

// BreakerClient wraps a Backend with a circuit breaker so that a down or
// overloaded backend fails fast instead of stalling every user action.
//
// Only temporary failures count against the breaker: transport errors, 5xx
// and 429. A 4xx with a backend message (blank lyrics, missing record) is a
// healthy answer, and a canceled context is the caller giving up.
type BreakerClient struct {
	backend Backend
	cb      *gobreaker.CircuitBreaker[any]
	name    string
}

// NewBreakerClient wraps backend using the breaker config section.
func NewBreakerClient(backend Backend, cfg *config.BreakerConfig) *BreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	minRequests := cfg.MinRequests
	failureRatio := cfg.FailureRatio

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= failureRatio {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		IsSuccessful: countsAsSuccess,
	})

	return &BreakerClient{backend: backend, cb: cb, name: breakerName}
}

// countsAsSuccess decides which errors leave the breaker counts untouched.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrNoUser) {
		return true
	}
	var be *BackendError
	if errors.As(err, &be) {
		return !be.Temporary()
	}
	return false
}

// State returns the current breaker state name (closed, half-open, open).
func (b *BreakerClient) State() string {
	return stateToString(b.cb.State())
}

// execute runs fn under the breaker and records metrics.
func (b *BreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		if countsAsSuccess(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
			return nil, err
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil || result == nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Analyze runs full analysis with circuit breaker protection.
func (b *BreakerClient) Analyze(ctx context.Context, lyrics string) (*models.AnalysisResult, error) {
	return castResult[*models.AnalysisResult](b.execute(func() (any, error) {
		return b.backend.Analyze(ctx, lyrics)
	}))
}

// AnalyzeSentiment runs sentiment analysis with circuit breaker protection.
func (b *BreakerClient) AnalyzeSentiment(ctx context.Context, lyrics string) (*models.SentimentResult, error) {
	return castResult[*models.SentimentResult](b.execute(func() (any, error) {
		return b.backend.AnalyzeSentiment(ctx, lyrics)
	}))
}

// AnalyzeTheme runs theme extraction with circuit breaker protection.
func (b *BreakerClient) AnalyzeTheme(ctx context.Context, lyrics string) (*models.ThemeResult, error) {
	return castResult[*models.ThemeResult](b.execute(func() (any, error) {
		return b.backend.AnalyzeTheme(ctx, lyrics)
	}))
}

// AnalyzeRhythm runs rhythm analysis with circuit breaker protection.
func (b *BreakerClient) AnalyzeRhythm(ctx context.Context, lyrics string) (*models.RhythmResult, error) {
	return castResult[*models.RhythmResult](b.execute(func() (any, error) {
		return b.backend.AnalyzeRhythm(ctx, lyrics)
	}))
}

// GenerateByTheme generates by theme with circuit breaker protection.
func (b *BreakerClient) GenerateByTheme(ctx context.Context, req strategy.ByTheme) (*models.GenerationResult, error) {
	return castResult[*models.GenerationResult](b.execute(func() (any, error) {
		return b.backend.GenerateByTheme(ctx, req)
	}))
}

// GenerateByContext generates from context with circuit breaker protection.
func (b *BreakerClient) GenerateByContext(ctx context.Context, req strategy.ByContext) (*models.GenerationResult, error) {
	return castResult[*models.GenerationResult](b.execute(func() (any, error) {
		return b.backend.GenerateByContext(ctx, req)
	}))
}

// GenerateFullSong generates a full song with circuit breaker protection.
func (b *BreakerClient) GenerateFullSong(ctx context.Context, req strategy.FullSong) (*models.GenerationResult, error) {
	return castResult[*models.GenerationResult](b.execute(func() (any, error) {
		return b.backend.GenerateFullSong(ctx, req)
	}))
}

// ConvertStyle converts style with circuit breaker protection.
func (b *BreakerClient) ConvertStyle(ctx context.Context, lyrics, targetStyle string) (*models.StyleConversion, error) {
	return castResult[*models.StyleConversion](b.execute(func() (any, error) {
		return b.backend.ConvertStyle(ctx, lyrics, targetStyle)
	}))
}

// ContinueConversation revises lyrics with circuit breaker protection.
func (b *BreakerClient) ContinueConversation(ctx context.Context, previousLyrics, feedback string) (*models.GenerationResult, error) {
	return castResult[*models.GenerationResult](b.execute(func() (any, error) {
		return b.backend.ContinueConversation(ctx, previousLyrics, feedback)
	}))
}

// OptimizeRhyme suggests rhyming lines with circuit breaker protection.
func (b *BreakerClient) OptimizeRhyme(ctx context.Context, line, targetRhyme string) (*models.RhymeSuggestions, error) {
	return castResult[*models.RhymeSuggestions](b.execute(func() (any, error) {
		return b.backend.OptimizeRhyme(ctx, line, targetRhyme)
	}))
}

// Recommend fetches recommendations with circuit breaker protection.
func (b *BreakerClient) Recommend(ctx context.Context, lyrics string, topK int) (*models.RecommendationResult, error) {
	return castResult[*models.RecommendationResult](b.execute(func() (any, error) {
		return b.backend.Recommend(ctx, lyrics, topK)
	}))
}

// KnowledgeGraph builds a knowledge graph with circuit breaker protection.
func (b *BreakerClient) KnowledgeGraph(ctx context.Context, songs []models.Song) (*models.KnowledgeGraph, error) {
	return castResult[*models.KnowledgeGraph](b.execute(func() (any, error) {
		return b.backend.KnowledgeGraph(ctx, songs)
	}))
}

// Preferences fetches user preferences with circuit breaker protection.
func (b *BreakerClient) Preferences(ctx context.Context) (models.Preferences, error) {
	return castResult[models.Preferences](b.execute(func() (any, error) {
		return b.backend.Preferences(ctx)
	}))
}

// UpdatePreferences stores user preferences with circuit breaker protection.
func (b *BreakerClient) UpdatePreferences(ctx context.Context, prefs models.Preferences) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.backend.UpdatePreferences(ctx, prefs)
	})
	return err
}

// History lists history records with circuit breaker protection.
func (b *BreakerClient) History(ctx context.Context, kind models.Kind, limit int) ([]models.Record, error) {
	return castResult[[]models.Record](b.execute(func() (any, error) {
		return b.backend.History(ctx, kind, limit)
	}))
}

// HistoryDetail fetches one record with circuit breaker protection.
func (b *BreakerClient) HistoryDetail(ctx context.Context, kind models.Kind, id int64) (models.Record, error) {
	return castResult[models.Record](b.execute(func() (any, error) {
		return b.backend.HistoryDetail(ctx, kind, id)
	}))
}

// DeleteHistory deletes one record with circuit breaker protection.
func (b *BreakerClient) DeleteHistory(ctx context.Context, kind models.Kind, id int64) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.backend.DeleteHistory(ctx, kind, id)
	})
	return err
}
