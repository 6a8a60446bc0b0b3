// Package model 定义核心数据模型
//
// user.go 包含用户账户相关的数据模型定义：
//   - User：注册用户
//   - UserRole：角色枚举（standard / admin）
package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	// UserRoleStandard 普通用户（默认角色）
	UserRoleStandard UserRole = "standard"

	// UserRoleAdmin 管理员
	UserRoleAdmin UserRole = "admin"
)

// User 注册用户
//
// email 在 users collection 上有唯一索引，是并发注册时防止重复的唯一保障。
// ActivationToken / ResetToken 均为一次性随机字符串，通过邮件下发。
type User struct {
	ID              string     `json:"id" bson:"_id"`
	Username        string     `json:"username" bson:"username"`
	Email           string     `json:"email" bson:"email"`
	PasswordHash    string     `json:"-" bson:"password_hash"` // never expose in JSON
	Role            UserRole   `json:"role" bson:"role"`
	Activated       bool       `json:"activated" bson:"activated"`
	ActivationToken string     `json:"-" bson:"activation_token,omitempty"`
	ResetToken      string     `json:"-" bson:"reset_token,omitempty"`
	ResetSentAt     *time.Time `json:"-" bson:"reset_sent_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// PublicUser 对外暴露的用户视图（列表/详情接口使用，隐藏令牌等敏感字段）
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"created_at"`
}

// Public 返回用户的公开视图
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Activated: u.Activated,
		CreatedAt: u.CreatedAt,
	}
}
