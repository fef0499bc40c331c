package wildcard

import (
	"math/rand"
	"strings"
	"time"
)

// Config holds tunable economy constants (defaults match the tuned game).
type Config struct {
	MaxCharges      int // default: 3
	StartingCharges int // default: 1

	RevealCost int // default: 1
	FreezeCost int // default: 1
	DoubleCost int // default: 1

	ARankThreshold float64 // default: 0.80 (fraction of max raw points)
	SRankThreshold float64 // default: 0.90

	// Consecutive charge-less questions before a guaranteed award.
	AntiFrustrationThreshold int // default: 3
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxCharges:               3,
		StartingCharges:          1,
		RevealCost:               1,
		FreezeCost:               1,
		DoubleCost:               1,
		ARankThreshold:           0.80,
		SRankThreshold:           0.90,
		AntiFrustrationThreshold: 3,
	}
}

// ActivationStatus distinguishes why a wildcard activation did or did not
// happen. Declined activations never mutate state.
type ActivationStatus int

const (
	StatusActivated ActivationStatus = iota
	StatusInsufficientCharges
	StatusAlreadyActive
)

func (s ActivationStatus) String() string {
	switch s {
	case StatusActivated:
		return "activated"
	case StatusInsufficientCharges:
		return "insufficient_charges"
	case StatusAlreadyActive:
		return "already_active"
	default:
		return "unknown"
	}
}

// Reveal identifies one hinted letter: a zero-based position in the correct
// answer and the (uppercased) letter at that position.
type Reveal struct {
	Position int    `json:"position"`
	Letter   string `json:"letter"`
}

// ChargeAward reports the outcome of a charge-earning evaluation.
type ChargeAward struct {
	Added           int  `json:"added"`
	CappedAtMax     bool `json:"capped_at_max"`
	AntiFrustration bool `json:"anti_frustration"`
}

// State carries the full serializable economy state for persistence.
type State struct {
	Charges                int   `json:"charges"`
	QuestionsWithoutCharge int   `json:"questions_without_charge"`
	FreezeActive           bool  `json:"freeze_active"`
	DoublePointsStacks     int   `json:"double_points_stacks"`
	RevealedPositions      []int `json:"revealed_positions,omitempty"`
	WildcardUsed           bool  `json:"wildcard_used"`
	DoublePointsUsed       bool  `json:"double_points_used"`
}

// Economy owns the charge currency and the three wildcard effects: reveal a
// letter, freeze the timer, and stack a double-points multiplier. One Economy
// per session; not safe for concurrent use.
type Economy struct {
	config Config
	rng    *rand.Rand

	charges                int
	questionsWithoutCharge int

	// Per-question scope, cleared by ResetForNewQuestion.
	freezeActive       bool
	doublePointsStacks int
	revealedPositions  map[int]struct{}
	wildcardUsed       bool
	doublePointsUsed   bool
}

// NewEconomy creates an economy with the starting charge balance. rng drives
// reveal-position selection; pass a seeded source in tests, or nil for a
// time-seeded one.
func NewEconomy(config Config, rng *rand.Rand) *Economy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Economy{
		config:            config,
		rng:               rng,
		charges:           config.StartingCharges,
		revealedPositions: make(map[int]struct{}),
	}
}

// Charges returns the current spendable balance.
func (e *Economy) Charges() int { return e.charges }

// CanAfford reports whether the balance covers cost.
func (e *Economy) CanAfford(cost int) bool { return e.charges >= cost }

// AddCharge credits amount, truncating at MaxCharges. Returns the resulting
// total; callers detect cap truncation by comparing against the old balance.
func (e *Economy) AddCharge(amount int) int {
	e.charges += amount
	if e.charges > e.config.MaxCharges {
		e.charges = e.config.MaxCharges
	}
	return e.charges
}

// SpendCharge deducts amount if affordable. Either the full amount is spent or
// nothing is.
func (e *Economy) SpendCharge(amount int) bool {
	if e.charges < amount {
		return false
	}
	e.charges -= amount
	return true
}

// ActivateRevealLetter spends a charge to reveal one letter of the correct
// answer that the player has not yet placed. The position is chosen uniformly
// at random among eligible slots. Returns ok=false, with no state mutated,
// when the player cannot afford the hint or nothing is left to reveal.
// Comparison is case-insensitive; callers pass answers with spaces stripped.
func (e *Economy) ActivateRevealLetter(currentAnswer, correctAnswer string) (Reveal, bool) {
	if !e.CanAfford(e.config.RevealCost) {
		return Reveal{}, false
	}

	current := []rune(strings.ToUpper(currentAnswer))
	correct := []rune(strings.ToUpper(correctAnswer))

	var eligible []int
	for i := range correct {
		if _, seen := e.revealedPositions[i]; seen {
			continue
		}
		if i >= len(current) || current[i] != correct[i] {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return Reveal{}, false
	}

	pos := eligible[e.rng.Intn(len(eligible))]
	e.SpendCharge(e.config.RevealCost)
	e.revealedPositions[pos] = struct{}{}
	e.wildcardUsed = true

	return Reveal{Position: pos, Letter: string(correct[pos])}, true
}

// ActivateFreeze spends a charge to freeze the question timer. At most one
// freeze per question; a second attempt reports StatusAlreadyActive without
// spending.
func (e *Economy) ActivateFreeze() ActivationStatus {
	if e.freezeActive {
		return StatusAlreadyActive
	}
	if !e.SpendCharge(e.config.FreezeCost) {
		return StatusInsufficientCharges
	}
	e.freezeActive = true
	e.wildcardUsed = true
	return StatusActivated
}

// DeactivateFreeze clears the freeze flag at the question boundary. The timer
// itself is owned by the caller; this only tracks the logical state.
func (e *Economy) DeactivateFreeze() { e.freezeActive = false }

// IsTimerFrozen reports whether a freeze is active this question.
func (e *Economy) IsTimerFrozen() bool { return e.freezeActive }

// ActivateDoublePoints spends a charge to double the score multiplier for the
// current question. Stacks compound: each activation costs another charge and
// doubles again (2x, 4x, 8x, ...). Returns the new stack count, or 0 if the
// player could not afford it.
func (e *Economy) ActivateDoublePoints() int {
	if !e.SpendCharge(e.config.DoubleCost) {
		return 0
	}
	e.doublePointsStacks++
	e.wildcardUsed = true
	e.doublePointsUsed = true
	return e.doublePointsStacks
}

// PointsMultiplier is the active score multiplier: 2^stacks, 1 when
// double points was never activated this question.
func (e *Economy) PointsMultiplier() int {
	return 1 << e.doublePointsStacks
}

// DoublePointsStacks returns the activation count for the current question.
func (e *Economy) DoublePointsStacks() int { return e.doublePointsStacks }

// WildcardUsedThisQuestion reports whether any wildcard was spent this
// question. Using one disqualifies the Rank S award.
func (e *Economy) WildcardUsedThisQuestion() bool { return e.wildcardUsed }

// CalculateEarnedCharges converts a question outcome into a charge award.
// Perfect, unskipped answers earn by rank: +1 at the A threshold, +1 more at
// the S threshold when no wildcard assisted. Every question that earns nothing
// advances the anti-frustration counter; the threshold question is guaranteed
// a single charge so a cold streak can never lock the player out of hints.
// Call exactly once per question, after the final scoring decision.
func (e *Economy) CalculateEarnedCharges(rawPoints, maxRaw float64, mistakes int, wasSkipped bool) ChargeAward {
	if wasSkipped || mistakes > 0 {
		return e.antiFrustrationCheck()
	}

	ratio := 0.0
	if maxRaw > 0 {
		ratio = rawPoints / maxRaw
	}

	potential := 0
	if ratio >= e.config.ARankThreshold {
		potential++
	}
	if ratio >= e.config.SRankThreshold && !e.wildcardUsed {
		potential++
	}

	if potential == 0 {
		return e.antiFrustrationCheck()
	}

	e.questionsWithoutCharge = 0
	before := e.charges
	e.AddCharge(potential)
	added := e.charges - before
	return ChargeAward{Added: added, CappedAtMax: added < potential}
}

func (e *Economy) antiFrustrationCheck() ChargeAward {
	e.questionsWithoutCharge++
	if e.questionsWithoutCharge < e.config.AntiFrustrationThreshold {
		return ChargeAward{}
	}

	e.questionsWithoutCharge = 0
	before := e.charges
	e.AddCharge(1)
	added := e.charges - before
	return ChargeAward{Added: added, CappedAtMax: added < 1, AntiFrustration: true}
}

// ResetForNewQuestion clears all per-question state. The charge balance and
// the anti-frustration counter persist across questions.
func (e *Economy) ResetForNewQuestion() {
	e.freezeActive = false
	e.doublePointsStacks = 0
	e.revealedPositions = make(map[int]struct{})
	e.wildcardUsed = false
	e.doublePointsUsed = false
}

// ResetGame restores the session-start state: starting charges, cleared
// anti-frustration counter, fresh question scope.
func (e *Economy) ResetGame() {
	e.charges = e.config.StartingCharges
	e.questionsWithoutCharge = 0
	e.ResetForNewQuestion()
}

// Snapshot exports the full economy state for external persistence.
func (e *Economy) Snapshot() State {
	positions := make([]int, 0, len(e.revealedPositions))
	for pos := range e.revealedPositions {
		positions = append(positions, pos)
	}
	return State{
		Charges:                e.charges,
		QuestionsWithoutCharge: e.questionsWithoutCharge,
		FreezeActive:           e.freezeActive,
		DoublePointsStacks:     e.doublePointsStacks,
		RevealedPositions:      positions,
		WildcardUsed:           e.wildcardUsed,
		DoublePointsUsed:       e.doublePointsUsed,
	}
}

// Restore replaces the economy state with a previously exported snapshot.
func (e *Economy) Restore(s State) {
	e.charges = s.Charges
	e.questionsWithoutCharge = s.QuestionsWithoutCharge
	e.freezeActive = s.FreezeActive
	e.doublePointsStacks = s.DoublePointsStacks
	e.revealedPositions = make(map[int]struct{}, len(s.RevealedPositions))
	for _, pos := range s.RevealedPositions {
		e.revealedPositions[pos] = struct{}{}
	}
	e.wildcardUsed = s.WildcardUsed
	e.doublePointsUsed = s.DoublePointsUsed
}
