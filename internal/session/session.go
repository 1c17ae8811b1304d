// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tomtom215/cadence/internal/client"
	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/history"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/strategy"
	"github.com/tomtom215/cadence/internal/validation"
	"github.com/tomtom215/cadence/internal/visualize"
)

// Metric results for session operations.
const (
	resultOK      = "ok"
	resultError   = "error"
	resultBusy    = "busy"
	resultInvalid = "invalid"
	resultClosed  = "closed"
)

// Session is one interactive view session.
//
// Thread Safety: all methods are safe for concurrent use.
type Session struct {
	backend  client.Backend
	store    *history.Store
	pub      history.Publisher
	defaults strategy.Defaults

	convertStyle string
	topK         int

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	closed         bool
	busy           map[Operation]bool
	analysis       *models.AnalysisResult
	charts         *visualize.ChartSet
	generation     *Generation
	recommendation *models.RecommendationResult
	lastNotice     *Notice
}

// New creates a session over backend. pub may be nil.
func New(backend client.Backend, cfg *config.Config, pub history.Publisher) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		backend:      backend,
		store:        history.NewStore(backend, &cfg.History, pub),
		pub:          pub,
		defaults:     strategy.DefaultsFromConfig(&cfg.Generation),
		convertStyle: cfg.Generation.ConvertStyle,
		topK:         cfg.Recommendation.TopK,
		ctx:          ctx,
		cancel:       cancel,
		busy:         make(map[Operation]bool),
	}
}

// Store exposes the history store for read access.
func (s *Session) Store() *history.Store {
	return s.store
}

// Defaults returns the generation defaults the resolver uses.
func (s *Session) Defaults() strategy.Defaults {
	return s.defaults
}

// Close cancels in-flight requests. Further operations return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	logging.Debug().Msg("Session closed")
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Busy reports whether op is in flight.
func (s *Session) Busy(op Operation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[op]
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Closed         bool                         `json:"closed"`
	Busy           []Operation                  `json:"busy"`
	Analysis       *models.AnalysisResult       `json:"analysis,omitempty"`
	Charts         *visualize.ChartSet          `json:"charts,omitempty"`
	Generation     *Generation                  `json:"generation,omitempty"`
	Recommendation *models.RecommendationResult `json:"recommendation,omitempty"`
	LastNotice     *Notice                      `json:"last_notice,omitempty"`
	History        history.Snapshot             `json:"history"`
}

// Snapshot returns the current state. Results are shared read-only values;
// callers must not modify them.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Closed:         s.closed,
		Busy:           make([]Operation, 0, len(s.busy)),
		Analysis:       s.analysis,
		Charts:         s.charts,
		Generation:     s.generation,
		Recommendation: s.recommendation,
	}
	for op, busy := range s.busy {
		if busy {
			snap.Busy = append(snap.Busy, op)
		}
	}
	if s.lastNotice != nil {
		n := *s.lastNotice
		snap.LastNotice = &n
	}
	s.mu.Unlock()

	sort.Slice(snap.Busy, func(i, j int) bool { return snap.Busy[i] < snap.Busy[j] })
	snap.History = s.store.Snapshot()
	return snap
}

// begin claims op's loading flag and derives the request context. The
// returned done func must be called exactly once.
func (s *Session) begin(ctx context.Context, op Operation, guard bool) (context.Context, func(), error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		metrics.RecordSessionOperation(string(op), resultClosed)
		return nil, nil, ErrClosed
	}
	if guard {
		if s.busy[op] {
			s.mu.Unlock()
			metrics.RecordSessionOperation(string(op), resultBusy)
			logging.Debug().Str("operation", string(op)).Msg("Operation already in flight")
			return nil, nil, ErrBusy
		}
		s.busy[op] = true
	}
	s.mu.Unlock()
	if guard {
		s.publish(events.TopicSessionChanged, events.SessionChanged{Operation: string(op), Busy: true})
	}

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	ctx = logging.ContextWithOperation(ctx, string(op))

	done := func() {
		stop()
		cancel()
		if !guard {
			return
		}
		s.mu.Lock()
		delete(s.busy, op)
		s.mu.Unlock()
		s.publish(events.TopicSessionChanged, events.SessionChanged{Operation: string(op), Busy: false})
	}
	return ctx, done, nil
}

// run executes one guarded backend operation. input, when non-nil, is
// validated first. apply stores the result; it runs under the session lock
// and only if the session is still open.
func run[T any](s *Session, ctx context.Context, op Operation, input any, call func(context.Context) (T, error), apply func(T)) (T, error) {
	var zero T

	if input != nil {
		if verr := validation.ValidateStruct(input); verr != nil {
			metrics.RecordSessionOperation(string(op), resultInvalid)
			s.notify(validationNotice(op, verr))
			return zero, verr
		}
	}

	ctx, done, err := s.begin(ctx, op, true)
	if err != nil {
		return zero, err
	}
	defer done()

	result, err := call(ctx)
	return finish(s, ctx, op, result, err, apply)
}

// finish applies a completed call, unless the session closed meanwhile.
func finish[T any](s *Session, ctx context.Context, op Operation, result T, err error, apply func(T)) (T, error) {
	var zero T

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		metrics.RecordSessionOperation(string(op), resultClosed)
		logging.Ctx(ctx).Debug().Msg("Discarded completion after session close")
		return zero, ErrClosed
	}
	if err == nil && apply != nil {
		apply(result)
	}
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, history.ErrSuperseded) {
			return zero, err
		}
		metrics.RecordSessionOperation(string(op), resultError)
		logging.Ctx(ctx).Warn().Err(err).Msg("Operation failed")
		s.notify(failureNotice(op, err))
		return zero, err
	}

	metrics.RecordSessionOperation(string(op), resultOK)
	if msg, ok := successMessages[op]; ok {
		s.notify(Notice{Level: LevelSuccess, Operation: op, Message: msg})
	}
	return result, nil
}

func (s *Session) notify(n Notice) {
	s.mu.Lock()
	s.lastNotice = &n
	s.mu.Unlock()
	s.publish(events.TopicNotice, events.Notice{Level: n.Level, Operation: string(n.Operation), Message: n.Message})
}

func (s *Session) publish(topic string, payload any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(topic, payload); err != nil && !errors.Is(err, events.ErrClosed) {
		logging.Warn().Err(err).Str("topic", topic).Msg("Failed to publish session event")
	}
}
