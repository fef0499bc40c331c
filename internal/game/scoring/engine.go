package scoring

import (
	"math"
)

// Config holds configurable scoring constants (defaults match the tuned game).
type Config struct {
	ReferenceBase        int     // default: 350 (base points at the reference bank size)
	ReferenceQuestions   int     // default: 15
	BaseMin              int     // default: 200
	BaseMax              int     // default: 700
	MaxTimeMultiplier    float64 // default: 1.50
	MistakePenaltyFactor float64 // default: 0.10 (10% of base per mistake)
	GracePeriodSeconds   float64 // default: 5 (free reading time)

	// Breakpoints of the time-decay curve, in effective seconds.
	FullBonusUntil  float64 // default: 40 (multiplier stays at max)
	BaseUntil       float64 // default: 80 (max -> 1.00)
	FloorUntil      float64 // default: 160 (1.00 -> floor)
	FloorMultiplier float64 // default: 0.50
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ReferenceBase:        350,
		ReferenceQuestions:   15,
		BaseMin:              200,
		BaseMax:              700,
		MaxTimeMultiplier:    1.50,
		MistakePenaltyFactor: 0.10,
		GracePeriodSeconds:   5,
		FullBonusUntil:       40,
		BaseUntil:            80,
		FloorUntil:           160,
		FloorMultiplier:      0.50,
	}
}

// Engine converts answer time and mistakes into points and tracks session
// aggregates. One Engine per session; not safe for concurrent use.
type Engine struct {
	config Config

	totalQuestions    int
	basePoints        int
	maxRawPerQuestion float64
	penaltyPerMistake int

	totalScore        int
	questionsAnswered int
	totalRawPoints    int
}

// QuestionResult records the outcome of a single question.
type QuestionResult struct {
	PointsEarned int     `json:"points_earned"`
	WasCorrect   bool    `json:"was_correct"`
	WasSkipped   bool    `json:"was_skipped"`
	Mistakes     int     `json:"mistakes"`
	TimeSeconds  float64 `json:"time_seconds"`
}

// Stats is a point-in-time snapshot of session scoring totals.
type Stats struct {
	TotalScore             int `json:"total_score"`
	QuestionsAnswered      int `json:"questions_answered"`
	TotalQuestions         int `json:"total_questions"`
	BasePoints             int `json:"base_points"`
	MaxPossiblePerQuestion int `json:"max_possible_per_question"`
}

// Totals carries the mutable session aggregates for persistence.
type Totals struct {
	TotalScore        int `json:"total_score"`
	QuestionsAnswered int `json:"questions_answered"`
	TotalRawPoints    int `json:"total_raw_points"`
}

// NewEngine creates a scoring engine sized to the question bank.
// Fewer questions make each one worth more, bounded to [BaseMin, BaseMax] so
// scores stay comparable across bank sizes.
func NewEngine(config Config, totalQuestions int) *Engine {
	if totalQuestions < 1 {
		totalQuestions = 1
	}

	scaled := float64(config.ReferenceBase) * float64(config.ReferenceQuestions) / float64(totalQuestions)
	base := int(math.Round(scaled))
	if base < config.BaseMin {
		base = config.BaseMin
	}
	if base > config.BaseMax {
		base = config.BaseMax
	}

	return &Engine{
		config:            config,
		totalQuestions:    totalQuestions,
		basePoints:        base,
		maxRawPerQuestion: float64(base) * config.MaxTimeMultiplier,
		penaltyPerMistake: int(math.Round(float64(base) * config.MistakePenaltyFactor)),
	}
}

// EffectiveTime strips the grace period from raw elapsed seconds. The first
// GracePeriodSeconds of every question are reading time, never penalized.
func (e *Engine) EffectiveTime(rawSeconds float64) float64 {
	return math.Max(0, rawSeconds-e.config.GracePeriodSeconds)
}

// TimeMultiplier maps effective seconds onto the monotone-decreasing
// piecewise-linear speed curve. Output is always within
// [FloorMultiplier, MaxTimeMultiplier].
func (e *Engine) TimeMultiplier(effectiveSeconds float64) float64 {
	t := math.Max(0, effectiveSeconds)
	cfg := e.config

	switch {
	case t <= cfg.FullBonusUntil:
		return cfg.MaxTimeMultiplier
	case t <= cfg.BaseUntil:
		frac := (t - cfg.FullBonusUntil) / (cfg.BaseUntil - cfg.FullBonusUntil)
		return cfg.MaxTimeMultiplier - frac*(cfg.MaxTimeMultiplier-1.0)
	case t <= cfg.FloorUntil:
		frac := (t - cfg.BaseUntil) / (cfg.FloorUntil - cfg.BaseUntil)
		return 1.0 - frac*(1.0-cfg.FloorMultiplier)
	default:
		return cfg.FloorMultiplier
	}
}

// RawPoints is the pre-penalty point value for the given effective time.
func (e *Engine) RawPoints(effectiveSeconds float64) int {
	return int(math.Round(float64(e.basePoints) * e.TimeMultiplier(effectiveSeconds)))
}

// Score computes final points for a question: raw points minus the mistake
// penalty, never negative.
func (e *Engine) Score(timeSeconds float64, mistakes int) int {
	score := e.RawPoints(e.EffectiveTime(timeSeconds)) - mistakes*e.penaltyPerMistake
	if score < 0 {
		score = 0
	}
	return score
}

// ProcessCorrectAnswer commits a correct answer into the session totals.
// multiplier is the active wildcard multiplier at commit time (1 = none); it
// scales the committed score but not the raw-point aggregate used for rank
// ratios. Must be called exactly once per correctly answered question —
// repeated calls double-count.
func (e *Engine) ProcessCorrectAnswer(timeSeconds float64, mistakes int, multiplier int) QuestionResult {
	if multiplier < 1 {
		multiplier = 1
	}

	points := e.Score(timeSeconds, mistakes) * multiplier
	e.totalScore += points
	e.totalRawPoints += e.RawPoints(e.EffectiveTime(timeSeconds))
	e.questionsAnswered++

	return QuestionResult{
		PointsEarned: points,
		WasCorrect:   true,
		Mistakes:     mistakes,
		TimeSeconds:  timeSeconds,
	}
}

// ProcessSkip records a skipped question. Zero points, no raw accumulation.
func (e *Engine) ProcessSkip() QuestionResult {
	e.questionsAnswered++
	return QuestionResult{WasSkipped: true}
}

// SessionStats returns a snapshot of the session totals. No side effects.
func (e *Engine) SessionStats() Stats {
	return Stats{
		TotalScore:             e.totalScore,
		QuestionsAnswered:      e.questionsAnswered,
		TotalQuestions:         e.totalQuestions,
		BasePoints:             e.basePoints,
		MaxPossiblePerQuestion: int(math.Round(e.maxRawPerQuestion)),
	}
}

// BasePoints returns the per-question base value derived at construction.
func (e *Engine) BasePoints() int { return e.basePoints }

// PenaltyPerMistake returns the flat deduction applied per mistake.
func (e *Engine) PenaltyPerMistake() int { return e.penaltyPerMistake }

// MaxRawPerQuestion is the theoretical per-question maximum before penalties,
// used as the denominator for rank-ratio calculations.
func (e *Engine) MaxRawPerQuestion() float64 { return e.maxRawPerQuestion }

// TotalRawPoints returns the running pre-penalty sum from correct answers.
func (e *Engine) TotalRawPoints() int { return e.totalRawPoints }

// Snapshot exports the mutable aggregates for external persistence.
func (e *Engine) Snapshot() Totals {
	return Totals{
		TotalScore:        e.totalScore,
		QuestionsAnswered: e.questionsAnswered,
		TotalRawPoints:    e.totalRawPoints,
	}
}

// Restore replaces the session aggregates with a previously exported snapshot.
func (e *Engine) Restore(t Totals) {
	e.totalScore = t.TotalScore
	e.questionsAnswered = t.QuestionsAnswered
	e.totalRawPoints = t.TotalRawPoints
}
