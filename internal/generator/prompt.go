package generator

import (
	"fmt"
	"strings"

	"github.com/AbdelalimB1729/The-Math-Council/internal/council"
	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
)

// systemPrompt builds the per-speaker system prompt for a debate turn.
func systemPrompt(profile council.Profile, difficulty string) string {
	return fmt.Sprintf(`You are %s, a mathematician participating in a debate about a mathematical problem.

%s

Your personality: %s
Your specialty: %s

Problem difficulty: %s

Instructions:
- Respond as your character would naturally speak
- Keep responses concise (2-3 sentences)
- Stay in character and use your specialty when relevant
- Be engaging and contribute meaningfully to the debate
- If you disagree with others, explain why respectfully
- Use mathematical reasoning appropriate for %s level problems`,
		profile.Name, profile.Description, profile.Personality, profile.Specialty, difficulty, difficulty)
}

// userPrompt builds the user prompt containing the problem statement and the
// debate so far.
func userPrompt(problem string, transcript []*domain.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mathematical Problem: %s\n\n", problem)

	if len(transcript) > 0 {
		b.WriteString("Current debate:\n")
		for _, m := range transcript {
			fmt.Fprintf(&b, "%s: %s\n", m.Name, m.Content)
		}
		b.WriteString("\n")
	}

	b.WriteString("Please provide your response to this problem, considering the current debate context.")
	return b.String()
}
