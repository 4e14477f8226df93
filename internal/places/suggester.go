// Package places provides home-zone suggestions for the settings form.
package places

import (
	"context"
	"fmt"
	"strings"
)

// MinQueryLength is the shortest input that produces suggestions.
const MinQueryLength = 3

// DefaultAreas is the fixed list served by the static provider.
var DefaultAreas = []string{
	"Center City, Philadelphia, PA",
	"South Philly, Philadelphia, PA",
	"Fishtown, Philadelphia, PA",
	"King of Prussia, PA",
	"Cherry Hill, NJ (nearby)",
}

// Suggester turns partial input into area labels. A real places lookup can
// be dropped in behind this interface.
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]string, error)
}

// Config selects and configures a Suggester.
type Config struct {
	Provider string
	Areas    []string
}

// NewSuggester creates the suggester named by cfg.Provider.
func NewSuggester(cfg Config) (Suggester, error) {
	switch cfg.Provider {
	case "", "static":
		return NewStaticSuggester(cfg.Areas), nil
	default:
		return nil, fmt.Errorf("unsupported places provider: %s", cfg.Provider)
	}
}

// StaticSuggester filters a fixed list by case-insensitive substring.
type StaticSuggester struct {
	areas []string
}

// NewStaticSuggester creates a StaticSuggester. An empty list means
// DefaultAreas.
func NewStaticSuggester(areas []string) *StaticSuggester {
	if len(areas) == 0 {
		areas = DefaultAreas
	}
	return &StaticSuggester{areas: append([]string(nil), areas...)}
}

// Suggest returns the areas containing text. Inputs shorter than
// MinQueryLength return nothing.
func (s *StaticSuggester) Suggest(_ context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < MinQueryLength {
		return []string{}, nil
	}

	needle := strings.ToLower(text)
	out := []string{}
	for _, a := range s.areas {
		if strings.Contains(strings.ToLower(a), needle) {
			out = append(out, a)
		}
	}
	return out, nil
}
