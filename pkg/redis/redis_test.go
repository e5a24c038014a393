package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFromUniversal(rdb, zap.NewNop()), mr
}

func TestBlacklistToken(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.BlacklistToken(ctx, "jti-1", time.Minute))
	ok, err := c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// 已过期的 Token 不写入
	require.NoError(t, c.BlacklistToken(ctx, "jti-2", 0))
	assert.False(t, mr.Exists(blacklistPrefix+"jti-2"))
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "第 %d 次请求应放行", i+1)
	}

	allowed, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestTryLockAndUnlock(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	token, ok, err := c.TryLock(ctx, "refresh", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = c.TryLock(ctx, "refresh", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "锁被占用时不应再次获取")

	assert.ErrorIs(t, c.Unlock(ctx, "refresh", "someone-else"), ErrLockNotHeld)
	require.NoError(t, c.Unlock(ctx, "refresh", token))
	assert.False(t, mr.Exists(lockPrefix+"refresh"))

	_, ok, err = c.TryLock(ctx, "refresh", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
