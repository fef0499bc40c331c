package term

import (
	"strings"

	"github.com/google/uuid"
)

// Category constants for readability.
const (
	CategoryGeneral = "general"
	CategoryScience = "science"
	CategoryHistory = "history"
)

// Term pairs a vocabulary word with its definition and optional media hints.
type Term struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"` // the answer string
	Definition string    `json:"definition"`
	Category   string    `json:"category"`
	ImagePath  string    `json:"image_path,omitempty"`
	AudioHint  string    `json:"audio_hint,omitempty"`
}

// AnswerKey returns the title with spaces stripped and letters uppercased,
// the form used for length, matching and reveal comparisons.
func (t Term) AnswerKey() string {
	return strings.ToUpper(strings.ReplaceAll(t.Title, " ", ""))
}

// PackRequest guides term selection for a new session.
type PackRequest struct {
	Category string
	Count    int
	Seed     string
}

// PackResponse holds the selected terms in play order.
type PackResponse struct {
	Terms []Term `json:"terms"`
	Seed  string `json:"seed"`
}
