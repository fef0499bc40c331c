package highscore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Supported score windows.
const (
	WindowDaily   = "daily"
	WindowAllTime = "all_time"
)

var defaultWindows = []string{WindowDaily, WindowAllTime}

// Entry is one finished session on the board.
type Entry struct {
	SessionID     uuid.UUID `json:"session_id"`
	Category      string    `json:"category"`
	Score         int       `json:"score"`
	CorrectCount  int       `json:"correct_count"`
	QuestionCount int       `json:"question_count"`
	Accuracy      float64   `json:"accuracy"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// ServiceOptions configures board behavior.
type ServiceOptions struct {
	TopN           int
	RedisKeyPrefix string
	EntryTTL       time.Duration // applied to daily windows
}

// Service keeps high scores in Redis sorted sets, one per window.
type Service struct {
	redis  *redis.Client
	logger zerolog.Logger
	topN   int
	prefix string
	ttl    time.Duration
}

// NewService constructs a high score service instance.
func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "hs"
	}
	ttl := opts.EntryTTL
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}

	return &Service{
		redis:  redis,
		logger: logger,
		topN:   topN,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Service) key(window string) string {
	if window == WindowDaily {
		return fmt.Sprintf("%s:%s:%s", s.prefix, window, time.Now().UTC().Format("2006-01-02"))
	}
	return fmt.Sprintf("%s:%s", s.prefix, window)
}

// Record adds a finished session to every window.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	if entry.QuestionCount > 0 {
		entry.Accuracy = float64(entry.CorrectCount) / float64(entry.QuestionCount)
	}
	entry.RecordedAt = time.Now().UTC()

	member, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	for _, window := range defaultWindows {
		key := s.key(window)
		if err := s.redis.ZAdd(ctx, key, redis.Z{
			Score:  float64(entry.Score),
			Member: string(member),
		}).Err(); err != nil {
			return fmt.Errorf("zadd %s: %w", key, err)
		}
		if window == WindowDaily {
			if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("set daily ttl failed")
			}
		}
		// Keep the set bounded.
		if err := s.redis.ZRemRangeByRank(ctx, key, 0, int64(-s.topN-1)).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("trim board failed")
		}
	}
	return nil
}

// Top returns the best scores for a window, highest first.
func (s *Service) Top(ctx context.Context, window string, limit int) ([]Entry, error) {
	if window != WindowDaily && window != WindowAllTime {
		return nil, fmt.Errorf("unknown window %q", window)
	}
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	members, err := s.redis.ZRevRange(ctx, s.key(window), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange: %w", err)
	}

	entries := make([]Entry, 0, len(members))
	for _, member := range members {
		var entry Entry
		if err := json.Unmarshal([]byte(member), &entry); err != nil {
			s.logger.Warn().Err(err).Msg("skip corrupted board entry")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
