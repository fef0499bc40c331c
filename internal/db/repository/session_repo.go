package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRow mirrors one row of the sessions table.
type SessionRow struct {
	ID                uuid.UUID
	Category          string
	TotalQuestions    int
	TotalScore        int
	QuestionsAnswered int
	ChargesRemaining  int
	Status            string
	History           []byte // per-question records as JSONB
	StartedAt         time.Time
	CompletedAt       *time.Time
}

// FinalizeSessionParams carries the end-of-session aggregates.
type FinalizeSessionParams struct {
	ID                uuid.UUID
	TotalScore        int
	QuestionsAnswered int
	ChargesRemaining  int
	Status            string
	History           []byte
}

// SessionRepository contains DB helpers for session records.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs a session repository over a pgx pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create persists the initial session row when a game starts.
func (r *SessionRepository) Create(ctx context.Context, id uuid.UUID, category string, totalQuestions int, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (session_id, category, total_questions, status, started_at)
		VALUES ($1, $2, $3, 'active', $4)`,
		id, category, totalQuestions, startedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Finalize writes the end-of-session totals and question history.
func (r *SessionRepository) Finalize(ctx context.Context, params FinalizeSessionParams) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions
		SET total_score = $2,
		    questions_answered = $3,
		    charges_remaining = $4,
		    status = $5,
		    history = $6,
		    completed_at = now()
		WHERE session_id = $1`,
		params.ID, params.TotalScore, params.QuestionsAnswered,
		params.ChargesRemaining, params.Status, params.History)
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finalize session: no row for %s", params.ID)
	}
	return nil
}

// GetSummary fetches a session row for reporting.
func (r *SessionRepository) GetSummary(ctx context.Context, id uuid.UUID) (SessionRow, error) {
	var row SessionRow
	err := r.pool.QueryRow(ctx, `
		SELECT session_id, category, total_questions, total_score, questions_answered,
		       charges_remaining, status, COALESCE(history, '[]'::jsonb), started_at, completed_at
		FROM sessions
		WHERE session_id = $1`, id).
		Scan(&row.ID, &row.Category, &row.TotalQuestions, &row.TotalScore, &row.QuestionsAnswered,
			&row.ChargesRemaining, &row.Status, &row.History, &row.StartedAt, &row.CompletedAt)
	if err != nil {
		return SessionRow{}, fmt.Errorf("get session summary: %w", err)
	}
	return row, nil
}
