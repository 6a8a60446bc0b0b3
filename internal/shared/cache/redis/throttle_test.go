package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testThrottleStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStoreFromClient(client), mr
}

func TestRecordLoginFailure_Increments(t *testing.T) {
	s, _ := testThrottleStore(t)
	ctx := context.Background()

	n, err := s.RecordLoginFailure(ctx, "alice@example.com", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.RecordLoginFailure(ctx, "alice@example.com", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// 不同邮箱互不影响
	n, err = s.RecordLoginFailure(ctx, "bob@example.com", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLoginAttempts_ZeroWhenUnknown(t *testing.T) {
	s, _ := testThrottleStore(t)

	n, err := s.LoginAttempts(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestClearLoginFailures(t *testing.T) {
	s, _ := testThrottleStore(t)
	ctx := context.Background()

	_, err := s.RecordLoginFailure(ctx, "alice@example.com", 15*time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.ClearLoginFailures(ctx, "alice@example.com"))

	n, err := s.LoginAttempts(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

// TestRecordLoginFailure_WindowExpires 验证窗口过期后计数清零
func TestRecordLoginFailure_WindowExpires(t *testing.T) {
	s, mr := testThrottleStore(t)
	ctx := context.Background()

	_, err := s.RecordLoginFailure(ctx, "alice@example.com", time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	n, err := s.LoginAttempts(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
