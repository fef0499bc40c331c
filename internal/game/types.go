package game

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lexiquest/internal/game/scoring"
	"lexiquest/internal/game/wildcard"
	"lexiquest/internal/term"
)

// Session lifecycle states.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// Wildcard kinds accepted by UseWildcard.
const (
	WildcardRevealLetter = "reveal_letter"
	WildcardFreezeTimer  = "freeze_timer"
	WildcardDoublePoints = "double_points"
)

// Placeholder for an unfilled answer slot.
const EmptySlot = '_'

// Session is the full serializable state of one game, persisted in Redis
// between calls. Terms carry the answers and never leave the server.
type Session struct {
	ID             uuid.UUID      `json:"id"`
	Status         string         `json:"status"`
	Category       string         `json:"category"`
	CreatedAt      time.Time      `json:"created_at"`
	Terms          []term.Term    `json:"terms"`
	Index          int            `json:"index"`
	QuestionStart  time.Time      `json:"question_start"`
	FrozenElapsed  *float64       `json:"frozen_elapsed,omitempty"`
	Mistakes       int            `json:"mistakes"`
	Typed          string         `json:"typed"`
	History        []Record       `json:"history"`
	ScoringTotals  scoring.Totals `json:"scoring_totals"`
	WildcardState  wildcard.State `json:"wildcard_state"`
	TotalQuestions int            `json:"total_questions"`
}

// Record is the persisted per-question history entry.
type Record struct {
	TermID          uuid.UUID `json:"term_id"`
	Title           string    `json:"title"`
	PointsEarned    int       `json:"points_earned"`
	WasCorrect      bool      `json:"was_correct"`
	WasSkipped      bool      `json:"was_skipped"`
	Mistakes        int       `json:"mistakes"`
	TimeSeconds     float64   `json:"time_seconds"`
	Multiplier      int       `json:"multiplier"`
	ChargesEarned   int       `json:"charges_earned"`
	ChargesCapped   bool      `json:"charges_capped"`
	AntiFrustration bool      `json:"anti_frustration"`
}

// CurrentTerm returns the active term, or false when the session is done.
func (s *Session) CurrentTerm() (term.Term, bool) {
	if s.Index < 0 || s.Index >= len(s.Terms) {
		return term.Term{}, false
	}
	return s.Terms[s.Index], true
}

// emptySlots builds the placeholder answer progress for an answer key.
func emptySlots(answerKey string) string {
	return strings.Repeat(string(EmptySlot), len([]rune(answerKey)))
}

// QuestionView is the client-facing shape of the active question. The answer
// itself is withheld; only the slot pattern and revealed letters show through.
type QuestionView struct {
	SessionID    uuid.UUID `json:"session_id"`
	Index        int       `json:"index"`
	Total        int       `json:"total"`
	Definition   string    `json:"definition"`
	ImagePath    string    `json:"image_path,omitempty"`
	AudioHint    string    `json:"audio_hint,omitempty"`
	Typed        string    `json:"typed"`
	AnswerLength int       `json:"answer_length"`
	Mistakes     int       `json:"mistakes"`
	Charges      int       `json:"charges"`
	Multiplier   int       `json:"multiplier"`
	TimerFrozen  bool      `json:"timer_frozen"`
}

// WildcardOutcome reports an activation attempt to the client.
type WildcardOutcome struct {
	Kind       string           `json:"kind"`
	Status     string           `json:"status"`
	Reveal     *wildcard.Reveal `json:"reveal,omitempty"`
	Stacks     int              `json:"stacks,omitempty"`
	Multiplier int              `json:"multiplier"`
	Charges    int              `json:"charges"`
	Typed      string           `json:"typed,omitempty"`
}

// AnswerOutcome reports a submit or skip.
type AnswerOutcome struct {
	Correct    bool                    `json:"correct"`
	Result     *scoring.QuestionResult `json:"result,omitempty"`
	Award      *wildcard.ChargeAward   `json:"award,omitempty"`
	Mistakes   int                     `json:"mistakes"`
	Charges    int                     `json:"charges"`
	Completed  bool                    `json:"completed"`
	Next       *QuestionView           `json:"next,omitempty"`
	FinalStats *scoring.Stats          `json:"final_stats,omitempty"`
}

// StartRequest configures a new session.
type StartRequest struct {
	QuestionCount int    `json:"question_count,omitempty"`
	Category      string `json:"category,omitempty"`
}

// StartResponse returns the session handle and the first question.
type StartResponse struct {
	SessionID uuid.UUID    `json:"session_id"`
	Token     string       `json:"token"`
	Question  QuestionView `json:"question"`
}
