// Package domain contains core domain types for The Math Council.
package domain

import (
	"time"
)

// Difficulty labels accepted for a debate session.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether label is one of the accepted difficulty labels.
func ValidDifficulty(label string) bool {
	switch label {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Session represents one debate over a single problem statement.
// Problem and difficulty are immutable after creation.
type Session struct {
	ID         int64     `json:"id"`
	Problem    string    `json:"problem"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}
