package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lexiquest/internal/db/repository"
	"lexiquest/internal/game/scoring"
	"lexiquest/internal/game/wildcard"
	"lexiquest/internal/highscore"
	"lexiquest/internal/term"
	"lexiquest/pkg/http/ws"
)

// TermProvider supplies the term pack for a new session.
type TermProvider interface {
	FetchPack(ctx context.Context, req term.PackRequest) (*term.PackResponse, error)
}

// SessionRecorder persists durable session rows.
type SessionRecorder interface {
	Create(ctx context.Context, id uuid.UUID, category string, totalQuestions int, startedAt time.Time) error
	Finalize(ctx context.Context, params repository.FinalizeSessionParams) error
}

// ScoreRecorder records finished sessions on the high score board.
type ScoreRecorder interface {
	Record(ctx context.Context, entry highscore.Entry) error
}

// EventPublisher pushes game events to session subscribers.
type EventPublisher interface {
	Publish(sessionID uuid.UUID, msg ws.Message)
}

// ServiceOptions configures the game service.
type ServiceOptions struct {
	ScoringConfig        scoring.Config
	WildcardConfig       wildcard.Config
	DefaultQuestionCount int
	Now                  func() time.Time // test hook; defaults to time.Now
	Rand                 *rand.Rand       // reveal-position source; nil = time-seeded
}

// Service orchestrates the session lifecycle: question flow, scoring commits,
// wildcard activations and charge awards, in that fixed order per question.
type Service struct {
	store    *SessionStore
	terms    TermProvider
	recorder SessionRecorder
	scores   ScoreRecorder
	events   EventPublisher
	opts     ServiceOptions
	logger   zerolog.Logger
}

// NewService creates a game service with all dependencies.
func NewService(
	store *SessionStore,
	terms TermProvider,
	recorder SessionRecorder,
	scores ScoreRecorder,
	events EventPublisher,
	opts ServiceOptions,
	logger zerolog.Logger,
) *Service {
	if opts.ScoringConfig.ReferenceBase == 0 {
		opts.ScoringConfig = scoring.DefaultConfig()
	}
	if opts.WildcardConfig.MaxCharges == 0 {
		opts.WildcardConfig = wildcard.DefaultConfig()
	}
	if opts.DefaultQuestionCount <= 0 {
		opts.DefaultQuestionCount = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		store:    store,
		terms:    terms,
		recorder: recorder,
		scores:   scores,
		events:   events,
		opts:     opts,
		logger:   logger,
	}
}

// Start creates a session, loads its term pack and opens the first question.
func (s *Service) Start(ctx context.Context, req StartRequest) (*Session, QuestionView, error) {
	count := req.QuestionCount
	if count <= 0 {
		count = s.opts.DefaultQuestionCount
	}
	category := req.Category
	if category == "" {
		category = term.CategoryGeneral
	}

	sessionID := uuid.New()
	now := s.opts.Now()
	seed := fmt.Sprintf("%s-%d", sessionID.String(), now.Unix())

	pack, err := s.terms.FetchPack(ctx, term.PackRequest{Category: category, Count: count, Seed: seed})
	if err != nil {
		return nil, QuestionView{}, fmt.Errorf("fetch terms: %w", err)
	}

	session := &Session{
		ID:             sessionID,
		Status:         StatusActive,
		Category:       category,
		CreatedAt:      now,
		Terms:          pack.Terms,
		TotalQuestions: len(pack.Terms),
	}

	economy := wildcard.NewEconomy(s.opts.WildcardConfig, s.opts.Rand)
	session.WildcardState = economy.Snapshot()
	session.ScoringTotals = scoring.Totals{}

	s.beginQuestion(session, now)

	if err := s.recorder.Create(ctx, sessionID, category, session.TotalQuestions, now); err != nil {
		return nil, QuestionView{}, fmt.Errorf("create session record: %w", err)
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, QuestionView{}, fmt.Errorf("save session state: %w", err)
	}

	sessionsStarted.Inc()
	s.publishQuestionStarted(session)

	return session, s.view(session), nil
}

// View returns the active question for a session. Read-only.
func (s *Service) View(ctx context.Context, id uuid.UUID) (QuestionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return QuestionView{}, err
	}
	return s.view(session), nil
}

// TypeLetter fills the next empty answer slot with a letter. A full grid is a
// silent no-op: the view is returned unchanged.
func (s *Service) TypeLetter(ctx context.Context, id uuid.UUID, letter string) (QuestionView, error) {
	runes := []rune(letter)
	if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
		return QuestionView{}, ErrInvalidLetter
	}

	return s.mutate(ctx, id, func(session *Session, _ *scoring.Engine, _ *wildcard.Economy) error {
		slots := []rune(session.Typed)
		for i, r := range slots {
			if r == EmptySlot {
				slots[i] = unicode.ToUpper(runes[0])
				break
			}
		}
		session.Typed = string(slots)
		return nil
	})
}

// Backspace clears the most recently filled slot. Revealed letters are locked
// and survive backspacing.
func (s *Service) Backspace(ctx context.Context, id uuid.UUID) (QuestionView, error) {
	return s.mutate(ctx, id, func(session *Session, _ *scoring.Engine, _ *wildcard.Economy) error {
		locked := make(map[int]bool, len(session.WildcardState.RevealedPositions))
		for _, pos := range session.WildcardState.RevealedPositions {
			locked[pos] = true
		}

		slots := []rune(session.Typed)
		for i := len(slots) - 1; i >= 0; i-- {
			if slots[i] != EmptySlot && !locked[i] {
				slots[i] = EmptySlot
				break
			}
		}
		session.Typed = string(slots)
		return nil
	})
}

// UseWildcard attempts a wildcard activation. Declined activations (cannot
// afford, already frozen, nothing to reveal) report a status and leave all
// state untouched.
func (s *Service) UseWildcard(ctx context.Context, id uuid.UUID, kind string) (WildcardOutcome, error) {
	outcome := WildcardOutcome{Kind: kind}

	_, err := s.mutate(ctx, id, func(session *Session, engine *scoring.Engine, economy *wildcard.Economy) error {
		current, ok := session.CurrentTerm()
		if !ok {
			return ErrSessionCompleted
		}

		switch kind {
		case WildcardRevealLetter:
			reveal, activated := economy.ActivateRevealLetter(session.Typed, current.AnswerKey())
			if !activated {
				if !economy.CanAfford(1) {
					outcome.Status = wildcard.StatusInsufficientCharges.String()
				} else {
					outcome.Status = "no_eligible_position"
				}
				break
			}
			slots := []rune(session.Typed)
			slots[reveal.Position] = []rune(reveal.Letter)[0]
			session.Typed = string(slots)
			outcome.Status = wildcard.StatusActivated.String()
			outcome.Reveal = &reveal
			wildcardsActivated.WithLabelValues(kind).Inc()
			s.events.Publish(session.ID, ws.NewMessage(ws.TypeLetterRevealed, ws.LetterRevealedPayload{
				Position: reveal.Position,
				Letter:   reveal.Letter,
				Charges:  economy.Charges(),
			}))

		case WildcardFreezeTimer:
			status := economy.ActivateFreeze()
			outcome.Status = status.String()
			if status == wildcard.StatusActivated {
				elapsed := s.elapsed(session)
				session.FrozenElapsed = &elapsed
				wildcardsActivated.WithLabelValues(kind).Inc()
				s.events.Publish(session.ID, ws.NewMessage(ws.TypeTimerFrozen, ws.TimerFrozenPayload{
					ElapsedSeconds: elapsed,
					Charges:        economy.Charges(),
				}))
			}

		case WildcardDoublePoints:
			stacks := economy.ActivateDoublePoints()
			if stacks == 0 {
				outcome.Status = wildcard.StatusInsufficientCharges.String()
				break
			}
			outcome.Status = wildcard.StatusActivated.String()
			outcome.Stacks = stacks
			wildcardsActivated.WithLabelValues(kind).Inc()
			s.events.Publish(session.ID, ws.NewMessage(ws.TypeDoublePoints, ws.DoublePointsPayload{
				Stacks:     stacks,
				Multiplier: economy.PointsMultiplier(),
				Charges:    economy.Charges(),
			}))

		default:
			return ErrUnknownWildcard
		}

		outcome.Multiplier = economy.PointsMultiplier()
		outcome.Charges = economy.Charges()
		outcome.Typed = session.Typed
		return nil
	})
	if err != nil {
		return WildcardOutcome{}, err
	}
	return outcome, nil
}

// Submit checks the typed answer. A wrong answer counts a mistake and leaves
// the question open; a right one commits the score, evaluates the charge
// award and advances to the next question.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (AnswerOutcome, error) {
	var outcome AnswerOutcome

	_, err := s.mutate(ctx, id, func(session *Session, engine *scoring.Engine, economy *wildcard.Economy) error {
		current, ok := session.CurrentTerm()
		if !ok {
			return ErrSessionCompleted
		}

		if session.Typed != current.AnswerKey() {
			session.Mistakes++
			outcome = AnswerOutcome{
				Correct:  false,
				Mistakes: session.Mistakes,
				Charges:  economy.Charges(),
			}
			s.events.Publish(session.ID, ws.NewMessage(ws.TypePlaySound, ws.PlaySoundPayload{Sound: "wrong"}))
			return nil
		}

		elapsed := s.elapsed(session)
		result := engine.ProcessCorrectAnswer(elapsed, session.Mistakes, economy.PointsMultiplier())
		raw := engine.RawPoints(engine.EffectiveTime(elapsed))
		award := economy.CalculateEarnedCharges(float64(raw), engine.MaxRawPerQuestion(), session.Mistakes, false)

		s.recordQuestion(session, current, result, award, economy.PointsMultiplier())
		s.events.Publish(session.ID, ws.NewMessage(ws.TypePlaySound, ws.PlaySoundPayload{Sound: "correct"}))

		outcome = s.buildAnswerOutcome(ctx, session, engine, economy, result, award)
		return nil
	})
	if err != nil {
		return AnswerOutcome{}, err
	}
	return outcome, nil
}

// Skip forfeits the current question for zero points and advances.
func (s *Service) Skip(ctx context.Context, id uuid.UUID) (AnswerOutcome, error) {
	var outcome AnswerOutcome

	_, err := s.mutate(ctx, id, func(session *Session, engine *scoring.Engine, economy *wildcard.Economy) error {
		current, ok := session.CurrentTerm()
		if !ok {
			return ErrSessionCompleted
		}

		result := engine.ProcessSkip()
		award := economy.CalculateEarnedCharges(0, engine.MaxRawPerQuestion(), 0, true)

		s.recordQuestion(session, current, result, award, 1)
		outcome = s.buildAnswerOutcome(ctx, session, engine, economy, result, award)
		return nil
	})
	if err != nil {
		return AnswerOutcome{}, err
	}
	return outcome, nil
}

// SessionStats is the end-of-game (or mid-game) summary view.
type SessionStats struct {
	scoring.Stats
	Charges int    `json:"charges"`
	Status  string `json:"status"`
}

// Finish ends a session early. Remaining questions are forfeited; the durable
// row is finalized as abandoned and the partial score still reaches the board.
func (s *Service) Finish(ctx context.Context, id uuid.UUID) (SessionStats, error) {
	var stats SessionStats

	_, err := s.mutate(ctx, id, func(session *Session, engine *scoring.Engine, economy *wildcard.Economy) error {
		s.finalize(ctx, session, engine, economy, StatusAbandoned)
		stats = SessionStats{
			Stats:   engine.SessionStats(),
			Charges: economy.Charges(),
			Status:  session.Status,
		}
		return nil
	})
	if err != nil {
		return SessionStats{}, err
	}
	return stats, nil
}

// Stats returns the scoring totals and charge balance. Read-only.
func (s *Service) Stats(ctx context.Context, id uuid.UUID) (SessionStats, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return SessionStats{}, err
	}

	engine := s.engine(session)
	return SessionStats{
		Stats:   engine.SessionStats(),
		Charges: session.WildcardState.Charges,
		Status:  session.Status,
	}, nil
}

// load fetches a session without locking, for read paths.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// mutate runs fn under the session lock with reconstructed engine/economy,
// then persists both snapshots. The returned view reflects the new state.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(*Session, *scoring.Engine, *wildcard.Economy) error) (QuestionView, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return QuestionView{}, fmt.Errorf("lock session: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("unlock failed")
		}
	}()

	session, err := s.load(ctx, id)
	if err != nil {
		return QuestionView{}, err
	}
	if session.Status != StatusActive {
		return QuestionView{}, ErrSessionCompleted
	}

	engine := s.engine(session)
	economy := s.economy(session)

	if err := fn(session, engine, economy); err != nil {
		return QuestionView{}, err
	}

	session.ScoringTotals = engine.Snapshot()
	session.WildcardState = economy.Snapshot()

	if err := s.store.Save(ctx, session); err != nil {
		return QuestionView{}, fmt.Errorf("save session state: %w", err)
	}
	return s.view(session), nil
}

func (s *Service) engine(session *Session) *scoring.Engine {
	engine := scoring.NewEngine(s.opts.ScoringConfig, session.TotalQuestions)
	engine.Restore(session.ScoringTotals)
	return engine
}

func (s *Service) economy(session *Session) *wildcard.Economy {
	economy := wildcard.NewEconomy(s.opts.WildcardConfig, s.opts.Rand)
	economy.Restore(session.WildcardState)
	return economy
}

// elapsed is the server-side answer clock: wall time since the question
// opened, pinned at the freeze moment while a freeze is active.
func (s *Service) elapsed(session *Session) float64 {
	if session.FrozenElapsed != nil {
		return *session.FrozenElapsed
	}
	return s.opts.Now().Sub(session.QuestionStart).Seconds()
}

func (s *Service) beginQuestion(session *Session, now time.Time) {
	current, ok := session.CurrentTerm()
	if !ok {
		return
	}
	session.Typed = emptySlots(current.AnswerKey())
	session.QuestionStart = now
	session.FrozenElapsed = nil
	session.Mistakes = 0
}

func (s *Service) recordQuestion(session *Session, t term.Term, result scoring.QuestionResult, award wildcard.ChargeAward, multiplier int) {
	session.History = append(session.History, Record{
		TermID:          t.ID,
		Title:           t.Title,
		PointsEarned:    result.PointsEarned,
		WasCorrect:      result.WasCorrect,
		WasSkipped:      result.WasSkipped,
		Mistakes:        result.Mistakes,
		TimeSeconds:     result.TimeSeconds,
		Multiplier:      multiplier,
		ChargesEarned:   award.Added,
		ChargesCapped:   award.CappedAtMax,
		AntiFrustration: award.AntiFrustration,
	})

	s.events.Publish(session.ID, ws.NewMessage(ws.TypeAnswerResult, ws.AnswerResultPayload{
		Correct:      result.WasCorrect,
		PointsEarned: result.PointsEarned,
		Mistakes:     result.Mistakes,
		TimeSeconds:  result.TimeSeconds,
		Skipped:      result.WasSkipped,
	}))

	if award.Added > 0 {
		chargesEarned.Add(float64(award.Added))
	}
}

// buildAnswerOutcome advances the session and shapes the response for a
// committed question (correct answer or skip).
func (s *Service) buildAnswerOutcome(ctx context.Context, session *Session, engine *scoring.Engine, economy *wildcard.Economy, result scoring.QuestionResult, award wildcard.ChargeAward) AnswerOutcome {
	if award.Added > 0 {
		s.events.Publish(session.ID, ws.NewMessage(ws.TypeChargesEarned, ws.ChargesEarnedPayload{
			Added:           award.Added,
			CappedAtMax:     award.CappedAtMax,
			AntiFrustration: award.AntiFrustration,
			Charges:         economy.Charges(),
		}))
	}

	outcome := AnswerOutcome{
		Correct:  result.WasCorrect,
		Result:   &result,
		Award:    &award,
		Mistakes: result.Mistakes,
		Charges:  economy.Charges(),
	}

	session.Index++
	if session.Index >= len(session.Terms) {
		s.finalize(ctx, session, engine, economy, StatusCompleted)
		stats := engine.SessionStats()
		outcome.Completed = true
		outcome.FinalStats = &stats
		return outcome
	}

	economy.ResetForNewQuestion()
	s.beginQuestion(session, s.opts.Now())
	s.publishQuestionStarted(session)

	next := s.viewWith(session, economy)
	outcome.Next = &next
	return outcome
}

// finalize closes out a session as completed or abandoned. Persistence
// failures are logged, not surfaced: the game result is already committed in
// Redis.
func (s *Service) finalize(ctx context.Context, session *Session, engine *scoring.Engine, economy *wildcard.Economy, status string) {
	session.Status = status
	stats := engine.SessionStats()

	history, err := json.Marshal(session.History)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal history")
		history = []byte("[]")
	}

	if err := s.recorder.Finalize(ctx, repository.FinalizeSessionParams{
		ID:                session.ID,
		TotalScore:        stats.TotalScore,
		QuestionsAnswered: stats.QuestionsAnswered,
		ChargesRemaining:  economy.Charges(),
		Status:            status,
		History:           history,
	}); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("finalize session record failed")
	}

	correct := 0
	for _, rec := range session.History {
		if rec.WasCorrect {
			correct++
		}
	}
	if err := s.scores.Record(ctx, highscore.Entry{
		SessionID:     session.ID,
		Category:      session.Category,
		Score:         stats.TotalScore,
		CorrectCount:  correct,
		QuestionCount: stats.TotalQuestions,
	}); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("record high score failed")
	}

	if status == StatusCompleted {
		sessionsCompleted.Inc()
	}
	s.events.Publish(session.ID, ws.NewMessage(ws.TypeSessionComplete, ws.SessionCompletePayload{
		TotalScore:        stats.TotalScore,
		QuestionsAnswered: stats.QuestionsAnswered,
		TotalQuestions:    stats.TotalQuestions,
	}))
}

func (s *Service) publishQuestionStarted(session *Session) {
	current, ok := session.CurrentTerm()
	if !ok {
		return
	}
	s.events.Publish(session.ID, ws.NewMessage(ws.TypeQuestionStarted, ws.QuestionStartedPayload{
		Index:        session.Index,
		Total:        session.TotalQuestions,
		Definition:   current.Definition,
		AnswerLength: len([]rune(current.AnswerKey())),
	}))
	s.events.Publish(session.ID, ws.NewMessage(ws.TypeSpeak, ws.SpeakPayload{Text: current.Definition}))
}

func (s *Service) view(session *Session) QuestionView {
	return s.viewWith(session, s.economy(session))
}

func (s *Service) viewWith(session *Session, economy *wildcard.Economy) QuestionView {
	view := QuestionView{
		SessionID:   session.ID,
		Index:       session.Index,
		Total:       session.TotalQuestions,
		Mistakes:    session.Mistakes,
		Charges:     economy.Charges(),
		Multiplier:  economy.PointsMultiplier(),
		TimerFrozen: economy.IsTimerFrozen(),
		Typed:       session.Typed,
	}
	if current, ok := session.CurrentTerm(); ok {
		view.Definition = current.Definition
		view.ImagePath = current.ImagePath
		view.AudioHint = current.AudioHint
		view.AnswerLength = len([]rune(current.AnswerKey()))
	}
	return view
}
