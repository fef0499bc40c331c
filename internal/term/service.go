package term

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
)

// Repository loads curated terms from durable storage.
type Repository interface {
	FetchPool(ctx context.Context, category string, limit int) ([]Term, error)
}

// PackCache holds previously assembled packs keyed by request.
type PackCache interface {
	Get(ctx context.Context, req PackRequest) (*PackResponse, error)
	Set(ctx context.Context, req PackRequest, resp PackResponse) error
}

// Service assembles seeded term packs for new sessions.
type Service struct {
	repo  Repository
	cache PackCache
}

func NewService(repo Repository, cache PackCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// FetchPack returns req.Count terms in a seed-deterministic order. The same
// seed always produces the same pack, which keeps retried session starts
// idempotent. A short pool degrades to whatever exists; an empty pool is the
// only error case.
func (s *Service) FetchPack(ctx context.Context, req PackRequest) (*PackResponse, error) {
	if req.Count < 1 {
		req.Count = 1
	}
	if req.Category == "" {
		req.Category = CategoryGeneral
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, req); err == nil && cached != nil {
			return cached, nil
		}
	}

	// Over-fetch so the seeded shuffle has variety to draw from.
	pool, err := s.repo.FetchPool(ctx, req.Category, req.Count*3)
	if err != nil {
		return nil, fmt.Errorf("fetch term pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no terms available for category %q", req.Category)
	}

	rng := rand.New(rand.NewSource(seedToInt64(req.Seed)))
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	count := req.Count
	if count > len(pool) {
		count = len(pool)
	}

	resp := PackResponse{Terms: pool[:count], Seed: req.Seed}
	if s.cache != nil {
		if err := s.cache.Set(ctx, req, resp); err != nil {
			// Cache failures are not fatal; the pack is already built.
			return &resp, nil
		}
	}
	return &resp, nil
}

func seedToInt64(seed string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return int64(h.Sum64())
}
