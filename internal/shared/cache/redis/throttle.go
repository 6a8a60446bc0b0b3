// Package redis 登录限流相关操作
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyLoginAttempts 登录失败计数 key 前缀
const keyLoginAttempts = "login_attempts:"

// RecordLoginFailure 记录一次登录失败，返回窗口期内的累计次数
//
// 首次失败时设置窗口过期时间，窗口结束后计数自动清零。
func (s *Store) RecordLoginFailure(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := keyLoginAttempts + email

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to record login failure: %w", err)
	}
	return incr.Val(), nil
}

// LoginAttempts 返回窗口期内的失败次数
func (s *Store) LoginAttempts(ctx context.Context, email string) (int64, error) {
	n, err := s.client.Get(ctx, keyLoginAttempts+email).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get login attempts: %w", err)
	}
	return n, nil
}

// ClearLoginFailures 登录成功后清除失败计数
func (s *Store) ClearLoginFailures(ctx context.Context, email string) error {
	return s.client.Del(ctx, keyLoginAttempts+email).Err()
}
