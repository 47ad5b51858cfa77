package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := GetRedisClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	return client, mr
}

func TestSessionRoundTrip(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.SetSession(ctx, "tok-1", 42, time.Minute))

	userID, err := client.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	require.NoError(t, client.DeleteSession(ctx, "tok-1"))
	_, err = client.GetSession(ctx, "tok-1")
	assert.Error(t, err)
}

func TestSessionExpiry(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.SetSession(ctx, "tok-2", 7, 30*time.Second))

	mr.FastForward(time.Minute)

	_, err := client.GetSession(ctx, "tok-2")
	assert.Error(t, err)
}

func TestSessionUnknownToken(t *testing.T) {
	client, _ := newTestRedis(t)

	_, err := client.GetSession(context.Background(), "never-issued")
	assert.Error(t, err)
}

func TestSessionCorruptValue(t *testing.T) {
	client, mr := newTestRedis(t)

	require.NoError(t, mr.Set("session:tok-3", "not-a-number"))
	_, err := client.GetSession(context.Background(), "tok-3")
	assert.Error(t, err)
}
