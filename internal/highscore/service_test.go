package highscore

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts ServiceOptions) *Service {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(client, zerolog.Nop(), opts)
}

func entry(score, correct, total int) Entry {
	return Entry{
		SessionID:     uuid.New(),
		Category:      "general",
		Score:         score,
		CorrectCount:  correct,
		QuestionCount: total,
	}
}

func TestRecordAndTopOrdering(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, entry(300, 3, 10)))
	require.NoError(t, svc.Record(ctx, entry(900, 9, 10)))
	require.NoError(t, svc.Record(ctx, entry(600, 6, 10)))

	for _, window := range []string{WindowDaily, WindowAllTime} {
		top, err := svc.Top(ctx, window, 10)
		require.NoError(t, err)
		require.Len(t, top, 3, "window %s", window)
		assert.Equal(t, 900, top[0].Score)
		assert.Equal(t, 600, top[1].Score)
		assert.Equal(t, 300, top[2].Score)
	}
}

func TestRecordComputesAccuracy(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, entry(500, 7, 10)))

	top, err := svc.Top(ctx, WindowAllTime, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.InDelta(t, 0.7, top[0].Accuracy, 0.001)
	assert.False(t, top[0].RecordedAt.IsZero())
}

func TestBoardIsTrimmedToTopN(t *testing.T) {
	svc := newTestService(t, ServiceOptions{TopN: 3})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, svc.Record(ctx, entry(i*100, i, 10)))
	}

	top, err := svc.Top(ctx, WindowAllTime, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, 500, top[0].Score)
	assert.Equal(t, 300, top[2].Score)
}

func TestTopLimitIsCapped(t *testing.T) {
	svc := newTestService(t, ServiceOptions{TopN: 2})
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		require.NoError(t, svc.Record(ctx, entry(i*100, i, 10)))
	}

	top, err := svc.Top(ctx, WindowAllTime, 0)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestTopRejectsUnknownWindow(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})

	_, err := svc.Top(context.Background(), "weekly", 10)
	assert.Error(t, err)
}

func TestDailyKeyCarriesDate(t *testing.T) {
	svc := newTestService(t, ServiceOptions{RedisKeyPrefix: "board"})

	today := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, fmt.Sprintf("board:daily:%s", today), svc.key(WindowDaily))
	assert.Equal(t, "board:all_time", svc.key(WindowAllTime))
}
