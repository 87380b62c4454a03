package generator

import (
	"context"
	"math/rand"

	"github.com/AbdelalimB1729/The-Math-Council/internal/council"
	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
)

// cannedResponses holds per-personality lines used when no backend is
// configured or a backend call fails.
var cannedResponses = map[string][]string{
	"Professor Euclid": {
		"From a geometric perspective, I believe we should approach this systematically with rigorous proof.",
		"Let me construct a formal argument using classical mathematical principles.",
		"The geometric intuition here suggests we need to establish clear axioms first.",
	},
	"Dr. Chaos": {
		"Looking at this probabilistically, I see interesting patterns emerging.",
		"From a statistical viewpoint, we should consider the distribution of possible outcomes.",
		"The randomness in this problem reveals some fascinating underlying structures.",
	},
	"Ms. Approximation": {
		"For practical purposes, let's start with a reasonable estimation.",
		"I'd suggest we approximate this first, then refine our approach.",
		"In real-world terms, we can get a good approximation quickly.",
	},
	"The Trickster": {
		"Hmm, but what if we consider the opposite approach?",
		"I'm going to challenge the conventional wisdom here...",
		"Wait, I think everyone is missing something obvious!",
	},
	"The Philosopher": {
		"This raises deeper questions about the nature of mathematical truth.",
		"Let's contemplate the fundamental assumptions underlying this problem.",
		"What does this tell us about the relationship between form and content?",
	},
	"Dr. Algorithm": {
		"Let me break this down into clear computational steps.",
		"We can solve this efficiently using a systematic algorithm.",
		"The computational complexity here is quite interesting.",
	},
	"Professor Infinity": {
		"In the abstract realm, this problem takes on infinite dimensions.",
		"Let's consider the theoretical implications of this mathematical structure.",
		"The infinite possibilities here are quite fascinating.",
	},
}

// CannedResponse returns a random canned line for the named personality.
// Unknown names fall back to Professor Euclid's lines so a caller always
// gets usable text.
func CannedResponse(name string) string {
	lines, ok := cannedResponses[name]
	if !ok {
		lines = cannedResponses["Professor Euclid"]
	}
	return lines[rand.Intn(len(lines))]
}

// Simulated is a Generator that produces canned responses locally. It never
// fails and is used when no OpenRouter API key is configured.
type Simulated struct{}

// NewSimulated creates a simulated generator.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Generate returns a canned response for the speaker.
func (s *Simulated) Generate(_ context.Context, profile council.Profile, _ string, _ []*domain.Message, _ string) (string, error) {
	return CannedResponse(profile.Name), nil
}
