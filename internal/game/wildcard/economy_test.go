package wildcard

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEconomy() *Economy {
	return NewEconomy(DefaultConfig(), rand.New(rand.NewSource(42)))
}

func TestStartingBalance(t *testing.T) {
	eco := newTestEconomy()
	assert.Equal(t, 1, eco.Charges())
	assert.True(t, eco.CanAfford(1))
	assert.False(t, eco.CanAfford(2))
}

func TestAddChargeCapsAtMax(t *testing.T) {
	eco := newTestEconomy()

	assert.Equal(t, 3, eco.AddCharge(10))
	assert.Equal(t, 3, eco.Charges())

	// Already at the cap: nothing actually added.
	before := eco.Charges()
	total := eco.AddCharge(5)
	assert.Equal(t, 3, total)
	assert.Equal(t, 0, total-before)
}

func TestSpendChargeAtomic(t *testing.T) {
	eco := newTestEconomy()

	assert.False(t, eco.SpendCharge(2), "cannot overspend")
	assert.Equal(t, 1, eco.Charges(), "failed spend must not mutate")

	assert.True(t, eco.SpendCharge(1))
	assert.Equal(t, 0, eco.Charges())
}

func TestRevealLetterPicksEligiblePosition(t *testing.T) {
	eco := newTestEconomy()

	// "H_CK" typed against "HACK": only index 1 is wrong.
	reveal, ok := eco.ActivateRevealLetter("HXCK", "HACK")
	assert.True(t, ok)
	assert.Equal(t, 1, reveal.Position)
	assert.Equal(t, "A", reveal.Letter)
	assert.Equal(t, 0, eco.Charges())
	assert.True(t, eco.WildcardUsedThisQuestion())
}

func TestRevealLetterCaseInsensitive(t *testing.T) {
	eco := newTestEconomy()

	reveal, ok := eco.ActivateRevealLetter("hxck", "hack")
	assert.True(t, ok)
	assert.Equal(t, 1, reveal.Position)
	assert.Equal(t, "A", reveal.Letter)
}

func TestRevealLetterPartialAnswer(t *testing.T) {
	eco := newTestEconomy()
	eco.AddCharge(2)

	// Only "HA" typed; positions 2 and 3 are empty and eligible.
	reveal, ok := eco.ActivateRevealLetter("HA", "HACK")
	assert.True(t, ok)
	assert.Contains(t, []int{2, 3}, reveal.Position)
}

func TestRevealLetterExhaustion(t *testing.T) {
	eco := newTestEconomy()

	// Fully correct answer: nothing eligible, no charge spent.
	_, ok := eco.ActivateRevealLetter("HACK", "HACK")
	assert.False(t, ok)
	assert.Equal(t, 1, eco.Charges())
	assert.False(t, eco.WildcardUsedThisQuestion())
}

func TestRevealLetterNeverRepeatsPosition(t *testing.T) {
	eco := newTestEconomy()
	eco.AddCharge(3)

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		reveal, ok := eco.ActivateRevealLetter("", "CAT")
		assert.True(t, ok)
		assert.False(t, seen[reveal.Position], "position %d revealed twice", reveal.Position)
		seen[reveal.Position] = true
	}

	// Every slot revealed: further requests decline without spending.
	remaining := eco.Charges()
	_, ok := eco.ActivateRevealLetter("", "CAT")
	assert.False(t, ok)
	assert.Equal(t, remaining, eco.Charges())
}

func TestRevealLetterInsufficientCharges(t *testing.T) {
	eco := newTestEconomy()
	eco.SpendCharge(1)

	_, ok := eco.ActivateRevealLetter("", "HACK")
	assert.False(t, ok)
	assert.False(t, eco.WildcardUsedThisQuestion())
}

func TestFreezeLifecycle(t *testing.T) {
	eco := newTestEconomy()

	assert.Equal(t, StatusActivated, eco.ActivateFreeze())
	assert.True(t, eco.IsTimerFrozen())
	assert.Equal(t, 0, eco.Charges())

	// Double-activation is a no-op, not a second spend.
	eco.AddCharge(1)
	assert.Equal(t, StatusAlreadyActive, eco.ActivateFreeze())
	assert.Equal(t, 1, eco.Charges())

	eco.DeactivateFreeze()
	assert.False(t, eco.IsTimerFrozen())
}

func TestFreezeInsufficientCharges(t *testing.T) {
	eco := newTestEconomy()
	eco.SpendCharge(1)

	assert.Equal(t, StatusInsufficientCharges, eco.ActivateFreeze())
	assert.False(t, eco.IsTimerFrozen())
	assert.False(t, eco.WildcardUsedThisQuestion())
}

func TestDoublePointsStacking(t *testing.T) {
	eco := newTestEconomy()
	eco.AddCharge(2)

	assert.Equal(t, 1, eco.PointsMultiplier())
	assert.Equal(t, 1, eco.ActivateDoublePoints())
	assert.Equal(t, 2, eco.PointsMultiplier())
	assert.Equal(t, 2, eco.ActivateDoublePoints())
	assert.Equal(t, 4, eco.PointsMultiplier())
	assert.Equal(t, 3, eco.ActivateDoublePoints())
	assert.Equal(t, 8, eco.PointsMultiplier())

	// Supply exhausted.
	assert.Equal(t, 0, eco.ActivateDoublePoints())
	assert.Equal(t, 8, eco.PointsMultiplier())
}

func TestCalculateEarnedChargesRanks(t *testing.T) {
	cases := []struct {
		name         string
		ratio        float64
		wildcardUsed bool
		wantAdded    int
	}{
		{"below A rank", 0.70, false, 0},
		{"A rank only", 0.85, false, 1},
		{"S rank unaided", 0.95, false, 2},
		{"S ratio but wildcard used", 0.95, true, 1},
		{"exactly A threshold", 0.80, false, 1},
		{"exactly S threshold", 0.90, false, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eco := newTestEconomy()
			eco.SpendCharge(1) // start empty so the cap never interferes
			if tc.wildcardUsed {
				eco.wildcardUsed = true
			}

			award := eco.CalculateEarnedCharges(tc.ratio*525, 525, 0, false)
			assert.Equal(t, tc.wantAdded, award.Added)
			assert.False(t, award.CappedAtMax)
			assert.False(t, award.AntiFrustration)
		})
	}
}

func TestCalculateEarnedChargesCapTruncation(t *testing.T) {
	eco := newTestEconomy()
	eco.AddCharge(1) // 2 charges; S rank would add 2 but cap allows 1

	award := eco.CalculateEarnedCharges(500, 525, 0, false)
	assert.Equal(t, 1, award.Added)
	assert.True(t, award.CappedAtMax)
	assert.Equal(t, 3, eco.Charges())
}

func TestCalculateEarnedChargesMistakesBlockRanks(t *testing.T) {
	eco := newTestEconomy()
	eco.SpendCharge(1)

	award := eco.CalculateEarnedCharges(525, 525, 1, false)
	assert.Equal(t, 0, award.Added)
}

func TestAntiFrustrationGuarantee(t *testing.T) {
	eco := newTestEconomy()
	eco.SpendCharge(1)

	first := eco.CalculateEarnedCharges(0, 1, 1, false)
	assert.Equal(t, ChargeAward{}, first)

	second := eco.CalculateEarnedCharges(0, 1, 1, false)
	assert.Equal(t, ChargeAward{}, second)

	third := eco.CalculateEarnedCharges(0, 1, 1, false)
	assert.Equal(t, 1, third.Added)
	assert.True(t, third.AntiFrustration)
	assert.Equal(t, 1, eco.Charges())

	// Counter reset: the streak starts over.
	fourth := eco.CalculateEarnedCharges(0, 1, 1, false)
	assert.Equal(t, ChargeAward{}, fourth)
}

func TestAntiFrustrationAppliesToSkips(t *testing.T) {
	eco := newTestEconomy()
	eco.SpendCharge(1)

	eco.CalculateEarnedCharges(0, 525, 0, true)
	eco.CalculateEarnedCharges(0, 525, 0, true)
	award := eco.CalculateEarnedCharges(0, 525, 0, true)

	assert.Equal(t, 1, award.Added)
	assert.True(t, award.AntiFrustration)
}

func TestAntiFrustrationCounterResetsOnRankAward(t *testing.T) {
	eco := newTestEconomy()
	eco.SpendCharge(1)

	eco.CalculateEarnedCharges(0, 1, 1, false)
	eco.CalculateEarnedCharges(0, 1, 1, false)

	// An earned charge clears the streak.
	award := eco.CalculateEarnedCharges(450, 525, 0, false)
	assert.Equal(t, 1, award.Added)

	next := eco.CalculateEarnedCharges(0, 1, 1, false)
	assert.Equal(t, ChargeAward{}, next, "streak must restart after any award")
}

func TestCalculateEarnedChargesDegenerateMaxRaw(t *testing.T) {
	eco := newTestEconomy()
	eco.SpendCharge(1)

	// Zero max raw: ratio treated as 0, anti-frustration path only.
	award := eco.CalculateEarnedCharges(100, 0, 0, false)
	assert.Equal(t, ChargeAward{}, award)
}

func TestResetForNewQuestionKeepsSharedState(t *testing.T) {
	eco := newTestEconomy()
	eco.AddCharge(2)
	eco.ActivateFreeze()
	eco.ActivateDoublePoints()
	eco.ActivateRevealLetter("", "GO")
	eco.CalculateEarnedCharges(0, 1, 1, false)

	balance := eco.Charges()
	eco.ResetForNewQuestion()

	assert.Equal(t, balance, eco.Charges())
	assert.False(t, eco.IsTimerFrozen())
	assert.Equal(t, 1, eco.PointsMultiplier())
	assert.False(t, eco.WildcardUsedThisQuestion())

	// Revealed-position memory is per question.
	eco.AddCharge(3)
	_, ok := eco.ActivateRevealLetter("", "GO")
	assert.True(t, ok)
}

func TestResetGame(t *testing.T) {
	eco := newTestEconomy()
	eco.AddCharge(2)
	eco.CalculateEarnedCharges(0, 1, 1, false)
	eco.ActivateDoublePoints()

	eco.ResetGame()

	assert.Equal(t, 1, eco.Charges())
	assert.Equal(t, 1, eco.PointsMultiplier())

	// Anti-frustration counter back to zero.
	eco.SpendCharge(1)
	eco.CalculateEarnedCharges(0, 1, 1, false)
	eco.CalculateEarnedCharges(0, 1, 1, false)
	award := eco.CalculateEarnedCharges(0, 1, 1, false)
	assert.True(t, award.AntiFrustration)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	eco := newTestEconomy()
	eco.AddCharge(2)
	eco.ActivateFreeze()
	eco.ActivateDoublePoints()
	eco.ActivateRevealLetter("", "HACK")
	eco.CalculateEarnedCharges(0, 1, 1, false)

	snap := eco.Snapshot()

	restored := NewEconomy(DefaultConfig(), rand.New(rand.NewSource(7)))
	restored.Restore(snap)

	assert.Equal(t, eco.Charges(), restored.Charges())
	assert.Equal(t, eco.IsTimerFrozen(), restored.IsTimerFrozen())
	assert.Equal(t, eco.PointsMultiplier(), restored.PointsMultiplier())
	assert.Equal(t, eco.WildcardUsedThisQuestion(), restored.WildcardUsedThisQuestion())

	// Revealed positions survive the round trip.
	assert.ElementsMatch(t, snap.RevealedPositions, restored.Snapshot().RevealedPositions)
}
