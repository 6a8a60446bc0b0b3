package mongostore

import (
	"context"
	"time"

	"articles-cms/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

// GetUserByEmailAndResetToken 按 {email, reset_token} 组合查找，用于密码重置校验
func (s *Store) GetUserByEmailAndResetToken(ctx context.Context, email, token string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{
		{Key: "email", Value: email},
		{Key: "reset_token", Value: token},
	})
}

// UpdateUserProfile 更新用户资料（username/email 白名单字段）
func (s *Store) UpdateUserProfile(ctx context.Context, id, username, email string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "username", Value: username},
		{Key: "email", Value: email},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "password_hash", Value: passwordHash},
		{Key: "updated_at", Value: time.Now()},
	})
}

// ActivateUser 标记账号已激活并清除激活令牌
func (s *Store) ActivateUser(ctx context.Context, id string) error {
	if err := updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "activated", Value: true},
		{Key: "updated_at", Value: time.Now()},
	}); err != nil {
		return err
	}
	return unsetFields(ctx, s.col(ColUsers), id, "activation_token")
}

// SetResetToken 写入新的重置令牌和下发时间
func (s *Store) SetResetToken(ctx context.Context, id, token string, sentAt time.Time) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "reset_token", Value: token},
		{Key: "reset_sent_at", Value: sentAt},
		{Key: "updated_at", Value: time.Now()},
	})
}

// ClearResetToken 清除已使用的重置令牌
func (s *Store) ClearResetToken(ctx context.Context, id string) error {
	return unsetFields(ctx, s.col(ColUsers), id, "reset_token", "reset_sent_at")
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}}).SetLimit(100)
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColUsers), id)
}
