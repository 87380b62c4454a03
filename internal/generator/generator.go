// Package generator produces debate responses for personality profiles,
// either through an OpenRouter-compatible chat completion API or a local
// simulated fallback.
package generator

import (
	"context"

	"github.com/AbdelalimB1729/The-Math-Council/internal/council"
	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
)

// Generator produces the next debate contribution for a speaker.
//
// Implementations should recover from backend failures themselves where
// possible; the orchestrator additionally substitutes canned text on error so
// a turn is never skipped.
type Generator interface {
	Generate(ctx context.Context, profile council.Profile, problem string, transcript []*domain.Message, difficulty string) (string, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, profile council.Profile, problem string, transcript []*domain.Message, difficulty string) (string, error)

// Generate implements Generator.
func (f Func) Generate(ctx context.Context, profile council.Profile, problem string, transcript []*domain.Message, difficulty string) (string, error) {
	return f(ctx, profile, problem, transcript, difficulty)
}
