// Package auth 用户认证：JWT 令牌管理、密码哈希、HTTP 中间件、账号生命周期
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"articles-cms/internal/shared/model"
)

// contextKey context 键类型
type contextKey string

const ctxKeyAuthUser contextKey = "auth_user"

// CookieName 页面端承载身份令牌的 cookie
const CookieName = "jwt"

// AuthUser 从 JWT 解析出的用户信息
type AuthUser struct {
	ID       string
	Username string
	Role     model.UserRole
}

// Config 认证配置
type Config struct {
	Secret        string        // JWT 签名密钥，进程级共享
	TokenTTL      time.Duration // 身份令牌有效期（默认 1 年）
	ResetTokenTTL time.Duration // 密码重置链接有效期
	LoginMaxTries int           // 窗口期内允许的登录失败次数
	LoginWindow   time.Duration // 登录限流窗口
	BaseURL       string        // 邮件链接前缀
}

// ============================================================================
// 密码哈希
// ============================================================================

// HashPassword 使用 bcrypt 哈希密码
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

// CheckPassword 验证密码
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ============================================================================
// JWT Token
// ============================================================================

// Claims JWT 声明：身份令牌只携带 {id, username, role} 三个业务字段
type Claims struct {
	jwt.RegisteredClaims
	Username string         `json:"username,omitempty"`
	Role     model.UserRole `json:"role,omitempty"`
}

// IssueToken 签发身份令牌
//
// 令牌自签发起有效 cfg.TokenTTL（默认 1 年），服务端不保存、不支持吊销：
// 账号随后被删除或降级，已签发的令牌在过期前依然通过签名校验。
func IssueToken(cfg Config, user *model.User) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.TokenTTL)),
		},
		Username: user.Username,
		Role:     user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken 解析并验证 JWT，签名无效/过期/格式错误时返回错误
//
// 只校验令牌本身，不查询用户存储。
func ParseToken(cfg Config, tokenString string) (*AuthUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &AuthUser{ID: claims.Subject, Username: claims.Username, Role: claims.Role}, nil
}

// RandomToken 生成 URL-safe 随机字符串，用于激活/重置令牌
func RandomToken(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)[:length]
}

// ============================================================================
// Cookie
// ============================================================================

// SetTokenCookie 把身份令牌写入 http-only cookie（页面端）
func SetTokenCookie(w http.ResponseWriter, cfg Config, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie 清除身份令牌 cookie（登出）
func ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// ============================================================================
// Context 辅助函数
// ============================================================================

// WithAuthUser 将认证用户信息注入 context
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, ctxKeyAuthUser, user)
}

// GetAuthUser 从 context 获取认证用户，未认证时返回 nil
func GetAuthUser(ctx context.Context) *AuthUser {
	user, _ := ctx.Value(ctxKeyAuthUser).(*AuthUser)
	return user
}
