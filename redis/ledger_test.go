package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedger(t *testing.T) (*Ledger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLedger(client), mr
}

func TestMarkProcessedIsFirstWriteWins(t *testing.T) {
	ledger, _ := setupLedger(t)
	ctx := context.Background()

	first, err := ledger.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := ledger.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := ledger.MarkProcessed(ctx, "evt_2")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestSeen(t *testing.T) {
	ledger, _ := setupLedger(t)
	ctx := context.Background()

	seen, err := ledger.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = ledger.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)

	seen, err = ledger.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestProcessedEntriesExpire(t *testing.T) {
	ledger, mr := setupLedger(t)
	ctx := context.Background()

	_, err := ledger.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, processedTTL, mr.TTL(processedKeyPrefix+"evt_1"))

	mr.FastForward(processedTTL)

	first, err := ledger.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, first, "an expired entry can be recorded again")
}
