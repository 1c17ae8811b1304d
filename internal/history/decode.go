// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package history

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/validation"
)

// Embedded document field names, as sent by the backend.
const (
	FieldSentiment       = "sentiment_result"
	FieldTheme           = "theme_result"
	FieldRhythm          = "rhythm_result"
	FieldRecommendations = "recommendations"
)

// FieldState is the outcome of decoding one embedded document.
type FieldState string

const (
	FieldAbsent    FieldState = "absent"
	FieldDecoded   FieldState = "decoded"
	FieldMalformed FieldState = "malformed"
)

// MalformedMarker is shown in place of a document that failed to decode.
const MalformedMarker = "数据格式错误"

// DecodeError describes an embedded document that could not be decoded.
type DecodeError struct {
	Kind  models.Kind
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s record: malformed %s: %v", e.Kind, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Field is one decoded embedded document.
type Field[T any] struct {
	State FieldState   `json:"state"`
	Value *T           `json:"value,omitempty"`
	Err   *DecodeError `json:"-"`
}

// OK reports whether the document decoded successfully.
func (f Field[T]) OK() bool { return f.State == FieldDecoded && f.Value != nil }

// MarshalJSON adds the malformed marker so renderers need no extra logic.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	type wire struct {
		State FieldState `json:"state"`
		Value *T         `json:"value,omitempty"`
		Error string     `json:"error,omitempty"`
	}
	w := wire{State: f.State, Value: f.Value}
	if f.State == FieldMalformed {
		w.Error = MalformedMarker
	}
	return json.Marshal(w)
}

// Detail is a decoded history record: AnalysisDetail, GenerationDetail or
// RecommendationDetail.
type Detail interface {
	Kind() models.Kind
	ID() int64
	// DecodeErrors lists the embedded documents that failed to decode.
	DecodeErrors() []*DecodeError
}

// AnalysisDetail is a decoded analysis record.
type AnalysisDetail struct {
	Record    *models.AnalysisRecord        `json:"record"`
	Sentiment Field[models.SentimentResult] `json:"sentiment"`
	Theme     Field[models.ThemeResult]     `json:"theme"`
	Rhythm    Field[models.RhythmResult]    `json:"rhythm"`
}

// GenerationDetail is a generation record. It has no embedded documents.
type GenerationDetail struct {
	Record *models.GenerationRecord `json:"record"`
}

// RecommendationDetail is a decoded recommendation record.
type RecommendationDetail struct {
	Record          *models.RecommendationRecord       `json:"record"`
	Recommendations Field[models.RecommendationResult] `json:"recommendations"`
}

func (d *AnalysisDetail) Kind() models.Kind       { return models.KindAnalysis }
func (d *GenerationDetail) Kind() models.Kind     { return models.KindGeneration }
func (d *RecommendationDetail) Kind() models.Kind { return models.KindRecommendation }

func (d *AnalysisDetail) ID() int64       { return d.Record.ID }
func (d *GenerationDetail) ID() int64     { return d.Record.ID }
func (d *RecommendationDetail) ID() int64 { return d.Record.ID }

func (d *AnalysisDetail) DecodeErrors() []*DecodeError {
	return collect(d.Sentiment.Err, d.Theme.Err, d.Rhythm.Err)
}

func (d *GenerationDetail) DecodeErrors() []*DecodeError { return nil }

func (d *RecommendationDetail) DecodeErrors() []*DecodeError {
	return collect(d.Recommendations.Err)
}

func collect(errs ...*DecodeError) []*DecodeError {
	var out []*DecodeError
	for _, e := range errs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Decode decodes every embedded document of rec independently. It returns
// nil only for a nil or unknown record.
func Decode(rec models.Record) Detail {
	switch r := rec.(type) {
	case *models.AnalysisRecord:
		if r == nil {
			return nil
		}
		return &AnalysisDetail{
			Record:    r,
			Sentiment: decodeField[models.SentimentResult](models.KindAnalysis, FieldSentiment, r.SentimentResult),
			Theme:     decodeField[models.ThemeResult](models.KindAnalysis, FieldTheme, r.ThemeResult),
			Rhythm:    decodeField[models.RhythmResult](models.KindAnalysis, FieldRhythm, r.RhythmResult),
		}
	case *models.GenerationRecord:
		if r == nil {
			return nil
		}
		return &GenerationDetail{Record: r}
	case *models.RecommendationRecord:
		if r == nil {
			return nil
		}
		return &RecommendationDetail{
			Record:          r,
			Recommendations: decodeField[models.RecommendationResult](models.KindRecommendation, FieldRecommendations, r.Recommendations),
		}
	default:
		return nil
	}
}

var errNullDocument = errors.New("document is null")

// decodeField parses one embedded document and checks it against the
// struct's validate tags.
func decodeField[T any](kind models.Kind, field string, p models.Payload) Field[T] {
	malformed := func(err error) Field[T] {
		metrics.RecordDecodeFailure(string(kind), field)
		return Field[T]{State: FieldMalformed, Err: &DecodeError{Kind: kind, Field: field, Err: err}}
	}

	doc, present, err := p.Document()
	if err != nil {
		return malformed(err)
	}
	if !present {
		return Field[T]{State: FieldAbsent}
	}
	// A stored document of null would otherwise decode into a zero value
	// that passes validation.
	if bytes.Equal(doc, []byte("null")) {
		return malformed(errNullDocument)
	}

	v := new(T)
	if err := json.Unmarshal(doc, v); err != nil {
		return malformed(err)
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		return malformed(verr)
	}
	return Field[T]{State: FieldDecoded, Value: v}
}
