// Package council holds the fixed catalog of mathematician personality
// profiles that can join a debate. The catalog is static configuration data:
// membership and field values never change at runtime.
package council

import (
	"errors"
	"math/rand"
)

// ErrUnknownProfile is returned by Lookup for a name not in the catalog.
var ErrUnknownProfile = errors.New("unknown personality profile")

// Profile describes one debate personality. Profiles are plain value records;
// behavioral variation lives entirely in the text fed to the response
// generator, not in type-level dispatch.
type Profile struct {
	Name        string   `json:"name"`
	Personality string   `json:"personality"`
	Specialty   string   `json:"specialty"`
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
}

var catalog = []Profile{
	{
		Name:        "Professor Euclid",
		Personality: "Rigorous and methodical",
		Specialty:   "Geometry and formal proofs",
		Description: "A classical mathematician who values rigorous proofs and geometric intuition. Always insists on formal mathematical reasoning.",
		Traits:      []string{"precise", "systematic", "geometric-thinking", "proof-oriented"},
	},
	{
		Name:        "Dr. Chaos",
		Personality: "Intuitive and probabilistic",
		Specialty:   "Probability and statistics",
		Description: "A mathematician who sees patterns in randomness and approaches problems through probability theory and statistical analysis.",
		Traits:      []string{"intuitive", "probabilistic", "pattern-recognition", "statistical-thinking"},
	},
	{
		Name:        "Ms. Approximation",
		Personality: "Practical and estimation-focused",
		Specialty:   "Numerical methods and estimation",
		Description: "A practical mathematician who values quick approximations and real-world applications. Often suggests estimation techniques.",
		Traits:      []string{"practical", "estimation-focused", "numerical", "real-world-oriented"},
	},
	{
		Name:        "The Trickster",
		Personality: "Playful and deliberately challenging",
		Specialty:   "Counterintuitive solutions",
		Description: "A mischievous mathematician who often presents deliberately wrong or controversial solutions to spark debate and critical thinking.",
		Traits:      []string{"playful", "controversial", "debate-provoking", "counterintuitive"},
	},
	{
		Name:        "The Philosopher",
		Personality: "Deep and contemplative",
		Specialty:   "Mathematical philosophy and foundations",
		Description: "A thoughtful mathematician who questions the fundamental nature of mathematical concepts and explores philosophical implications.",
		Traits:      []string{"philosophical", "contemplative", "foundational", "abstract-thinking"},
	},
	{
		Name:        "Dr. Algorithm",
		Personality: "Systematic and computational",
		Specialty:   "Algorithms and computational methods",
		Description: "A computational mathematician who thinks in terms of algorithms, efficiency, and step-by-step procedures.",
		Traits:      []string{"algorithmic", "computational", "efficiency-focused", "step-by-step"},
	},
	{
		Name:        "Professor Infinity",
		Personality: "Abstract and theoretical",
		Specialty:   "Abstract algebra and set theory",
		Description: "A theoretical mathematician who deals with abstract concepts, infinite processes, and pure mathematical structures.",
		Traits:      []string{"abstract", "theoretical", "infinite-thinking", "pure-mathematics"},
	},
}

// Size returns the number of profiles in the catalog.
func Size() int {
	return len(catalog)
}

// All returns a copy of the full catalog in its canonical order.
func All() []Profile {
	out := make([]Profile, len(catalog))
	copy(out, catalog)
	return out
}

// Sample returns n distinct profiles chosen uniformly at random without
// replacement. n is clamped to the catalog size: asking for more than the
// catalog holds returns the full catalog, not an error.
func Sample(n int) []Profile {
	shuffled := All()
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	if n < 0 {
		n = 0
	}
	return shuffled[:n]
}

// Lookup returns the profile with the given exact name.
func Lookup(name string) (Profile, error) {
	for _, p := range catalog {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, ErrUnknownProfile
}
