package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexiquest/internal/term"
)

// TermRepository contains DB helpers for the curated term bank.
type TermRepository struct {
	pool *pgxpool.Pool
}

// NewTermRepository constructs a term repository over a pgx pool.
func NewTermRepository(pool *pgxpool.Pool) *TermRepository {
	return &TermRepository{pool: pool}
}

// FetchPool retrieves up to limit verified terms for a category.
func (r *TermRepository) FetchPool(ctx context.Context, category string, limit int) ([]term.Term, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT term_id, title, definition, category, COALESCE(image_path, ''), COALESCE(audio_hint, '')
		FROM terms
		WHERE category = $1 AND verified
		ORDER BY random()
		LIMIT $2`,
		category, limit)
	if err != nil {
		return nil, fmt.Errorf("query term pool: %w", err)
	}
	defer rows.Close()

	var terms []term.Term
	for rows.Next() {
		var t term.Term
		if err := rows.Scan(&t.ID, &t.Title, &t.Definition, &t.Category, &t.ImagePath, &t.AudioHint); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// Insert stores a new term into the bank. Duplicate titles within a category
// are rejected by the unique index.
func (r *TermRepository) Insert(ctx context.Context, t term.Term) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO terms (term_id, title, definition, category, image_path, audio_hint, verified)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), true)`,
		t.ID, t.Title, t.Definition, t.Category, t.ImagePath, t.AudioHint)
	if err != nil {
		return fmt.Errorf("insert term: %w", err)
	}
	return nil
}

// Count returns the number of verified terms in a category.
func (r *TermRepository) Count(ctx context.Context, category string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM terms WHERE category = $1 AND verified`, category).Scan(&n)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("count terms: %w", err)
	}
	return n, nil
}
