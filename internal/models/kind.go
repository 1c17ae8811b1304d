// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

import "fmt"

// Kind identifies one of the three history record collections.
// The string value doubles as the backend path segment.
type Kind string

const (
	KindAnalysis       Kind = "analysis"
	KindGeneration     Kind = "generation"
	KindRecommendation Kind = "recommendation"
)

// Kinds returns all record kinds in display order.
func Kinds() []Kind {
	return []Kind{KindAnalysis, KindGeneration, KindRecommendation}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindAnalysis, KindGeneration, KindRecommendation:
		return true
	default:
		return false
	}
}

// Label returns the history tab label for the kind.
func (k Kind) Label() string {
	switch k {
	case KindAnalysis:
		return "分析历史"
	case KindGeneration:
		return "生成历史"
	case KindRecommendation:
		return "推荐历史"
	default:
		return string(k)
	}
}

// ParseKind converts a path segment or CLI argument into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown history kind %q (want analysis, generation or recommendation)", s)
	}
	return k, nil
}
