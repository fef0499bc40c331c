package term

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubRepo struct {
	fetch func(ctx context.Context, category string, limit int) ([]Term, error)
}

func (s *stubRepo) FetchPool(ctx context.Context, category string, limit int) ([]Term, error) {
	return s.fetch(ctx, category, limit)
}

type memoryCache struct {
	store map[string]PackResponse
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[string]PackResponse{}}
}

func (c *memoryCache) key(req PackRequest) string {
	return fmt.Sprintf("%s:%s:%d", req.Category, req.Seed, req.Count)
}

func (c *memoryCache) Get(_ context.Context, req PackRequest) (*PackResponse, error) {
	if val, ok := c.store[c.key(req)]; ok {
		return &val, nil
	}
	return nil, nil
}

func (c *memoryCache) Set(_ context.Context, req PackRequest, resp PackResponse) error {
	c.store[c.key(req)] = resp
	return nil
}

func makePool(n int) []Term {
	terms := make([]Term, n)
	for i := range terms {
		terms[i] = Term{
			ID:         uuid.New(),
			Title:      fmt.Sprintf("word%d", i),
			Definition: fmt.Sprintf("definition %d", i),
			Category:   CategoryGeneral,
		}
	}
	return terms
}

func TestFetchPackDeterministicForSeed(t *testing.T) {
	pool := makePool(20)
	repo := &stubRepo{fetch: func(ctx context.Context, category string, limit int) ([]Term, error) {
		cp := make([]Term, len(pool))
		copy(cp, pool)
		return cp, nil
	}}
	service := NewService(repo, nil)

	req := PackRequest{Category: CategoryGeneral, Count: 5, Seed: "seed-a"}
	first, err := service.FetchPack(context.Background(), req)
	assert.NoError(t, err)
	second, err := service.FetchPack(context.Background(), req)
	assert.NoError(t, err)

	assert.Equal(t, first.Terms, second.Terms, "same seed must produce the same pack")

	other, err := service.FetchPack(context.Background(), PackRequest{Category: CategoryGeneral, Count: 5, Seed: "seed-b"})
	assert.NoError(t, err)
	assert.NotEqual(t, first.Terms, other.Terms, "different seed should reorder")
}

func TestFetchPackUsesCache(t *testing.T) {
	calls := 0
	repo := &stubRepo{fetch: func(ctx context.Context, category string, limit int) ([]Term, error) {
		calls++
		return makePool(10), nil
	}}
	cache := newMemoryCache()
	service := NewService(repo, cache)

	req := PackRequest{Category: CategoryGeneral, Count: 3, Seed: "seed"}
	_, err := service.FetchPack(context.Background(), req)
	assert.NoError(t, err)
	_, err = service.FetchPack(context.Background(), req)
	assert.NoError(t, err)

	assert.Equal(t, 1, calls, "second fetch should hit the cache")
	assert.Len(t, cache.store, 1)
}

func TestFetchPackShortPool(t *testing.T) {
	repo := &stubRepo{fetch: func(ctx context.Context, category string, limit int) ([]Term, error) {
		return makePool(2), nil
	}}
	service := NewService(repo, nil)

	resp, err := service.FetchPack(context.Background(), PackRequest{Count: 10, Seed: "s"})
	assert.NoError(t, err)
	assert.Len(t, resp.Terms, 2, "short pool degrades to what exists")
}

func TestFetchPackEmptyPool(t *testing.T) {
	repo := &stubRepo{fetch: func(ctx context.Context, category string, limit int) ([]Term, error) {
		return nil, nil
	}}
	service := NewService(repo, nil)

	_, err := service.FetchPack(context.Background(), PackRequest{Count: 5, Seed: "s"})
	assert.Error(t, err)
}

func TestFetchPackRepoError(t *testing.T) {
	repo := &stubRepo{fetch: func(ctx context.Context, category string, limit int) ([]Term, error) {
		return nil, errors.New("db down")
	}}
	service := NewService(repo, nil)

	_, err := service.FetchPack(context.Background(), PackRequest{Count: 5, Seed: "s"})
	assert.Error(t, err)
}

func TestAnswerKeyStripsSpacesAndUppercases(t *testing.T) {
	term := Term{Title: "ice cream"}
	assert.Equal(t, "ICECREAM", term.AnswerKey())
}
