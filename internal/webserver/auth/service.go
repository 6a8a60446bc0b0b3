package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"articles-cms/internal/mailer"
	"articles-cms/internal/shared/model"
	"articles-cms/internal/shared/storage"
)

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmailAndResetToken(ctx context.Context, email, token string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	ActivateUser(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, token string, sentAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
}

// Throttle 登录限流接口，由 Redis 缓存实现；nil 表示不限流
type Throttle interface {
	RecordLoginFailure(ctx context.Context, email string, window time.Duration) (int64, error)
	LoginAttempts(ctx context.Context, email string) (int64, error)
	ClearLoginFailures(ctx context.Context, email string) error
}

// 账号生命周期领域错误
var (
	// ErrInvalidCredentials 邮箱不存在或密码错误：两种情况对外返回同一个错误，
	// 避免暴露哪一项出错（防止凭证枚举）
	ErrInvalidCredentials = errors.New("email or password is incorrect")

	// ErrNotActivated 账号尚未通过邮件激活
	ErrNotActivated = errors.New("account not activated")

	// ErrActivationFailed 激活失败（邮箱/令牌缺失或不匹配），页面端静默处理
	ErrActivationFailed = errors.New("could not activate account")

	// ErrThrottled 登录失败次数超限
	ErrThrottled = errors.New("too many login attempts")
)

// 激活/重置令牌长度（URL-safe 随机串）
const lifecycleTokenLen = 10

// Service 账号生命周期：注册、激活、登录、密码重置
//
// API 层和页面层共用同一个 Service，仅在表现层（JSON / 表单渲染）有差异。
type Service struct {
	store    UserStore
	mailer   mailer.Mailer
	throttle Throttle
	cfg      Config
}

// NewService 创建账号生命周期服务
func NewService(store UserStore, m mailer.Mailer, throttle Throttle, cfg Config) *Service {
	return &Service{store: store, mailer: m, throttle: throttle, cfg: cfg}
}

// Config 返回认证配置（中间件与表现层共用）
func (s *Service) Config() Config {
	return s.cfg
}

// Store 返回底层用户存储
func (s *Service) Store() UserStore {
	return s.store
}

// ============================================================================
// 注册
// ============================================================================

// validateSignup 收集注册字段错误；邮箱需已归一化
func (s *Service) validateSignup(ctx context.Context, username, email, password string, checkConfirm bool, confirm string) model.ValidationErrors {
	var errs model.ValidationErrors
	model.ValidateUsername(&errs, username)
	model.ValidateEmail(&errs, email)
	model.ValidatePassword(&errs, password, checkConfirm, confirm)

	if email != "" {
		existing, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			log.Printf("[auth.signup] GetUserByEmail error: %v", err)
		} else if existing != nil {
			errs.Add("email", "Email is already in use.")
		}
	}
	return errs
}

// createUser 哈希密码并插入用户，唯一索引冲突转换为字段错误
func (s *Service) createUser(ctx context.Context, user *model.User, password string) (model.ValidationErrors, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.store.CreateUser(ctx, user); err != nil {
		// 并发注册竞态：预检查通过但插入撞上唯一索引，
		// 返回与预检查一致的校验错误而不是 500
		if errors.Is(err, storage.ErrDuplicate) {
			var errs model.ValidationErrors
			errs.Add("email", "Email is already in use.")
			return errs, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return nil, nil
}

// SignupImmediate 注册并立即激活（API 端），成功时返回用户和身份令牌
func (s *Service) SignupImmediate(ctx context.Context, username, email, password string) (*model.User, string, model.ValidationErrors, error) {
	email = model.NormalizeEmail(email)
	if errs := s.validateSignup(ctx, username, email, password, false, ""); !errs.Empty() {
		return nil, "", errs, nil
	}

	now := time.Now()
	user := &model.User{
		ID:        generateID("usr"),
		Username:  username,
		Email:     email,
		Role:      model.UserRoleStandard,
		Activated: true, // No separate activation step
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errs, err := s.createUser(ctx, user, password); err != nil || !errs.Empty() {
		return nil, "", errs, err
	}

	token, err := IssueToken(s.cfg, user)
	if err != nil {
		return nil, "", nil, fmt.Errorf("issue token: %w", err)
	}

	log.Printf("[auth] User registered: %s (%s)", user.Email, user.ID)
	return user, token, nil, nil
}

// SignupPendingActivation 注册并发送激活邮件（页面端），激活前不签发令牌
func (s *Service) SignupPendingActivation(ctx context.Context, username, email, password, confirm string) (*model.User, model.ValidationErrors, error) {
	email = model.NormalizeEmail(email)
	if errs := s.validateSignup(ctx, username, email, password, true, confirm); !errs.Empty() {
		return nil, errs, nil
	}

	now := time.Now()
	user := &model.User{
		ID:              generateID("usr"),
		Username:        username,
		Email:           email,
		Role:            model.UserRoleStandard,
		Activated:       false,
		ActivationToken: RandomToken(lifecycleTokenLen),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if errs, err := s.createUser(ctx, user, password); err != nil || !errs.Empty() {
		return nil, errs, err
	}

	msg, err := mailer.ActivationEmail(s.cfg.BaseURL, user.Username, user.Email, user.ActivationToken)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		// 邮件失败不回滚注册，激活邮件可以重发
		log.Printf("[auth.signup] send activation email to %s failed: %v", user.Email, err)
	}

	log.Printf("[auth] User registered (pending activation): %s (%s)", user.Email, user.ID)
	return user, nil, nil
}

// ============================================================================
// 激活
// ============================================================================

// Activate 校验 {email, token} 并激活账号，成功时签发身份令牌
//
// 所有失败路径统一返回 ErrActivationFailed，页面端静默跳转。
func (s *Service) Activate(ctx context.Context, email, token string) (*model.User, string, error) {
	email = model.NormalizeEmail(email)
	if email == "" || token == "" {
		return nil, "", ErrActivationFailed
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if user == nil || user.ActivationToken == "" || user.ActivationToken != token {
		return nil, "", ErrActivationFailed
	}

	if err := s.store.ActivateUser(ctx, user.ID); err != nil {
		return nil, "", fmt.Errorf("activate user: %w", err)
	}
	user.Activated = true

	jwtToken, err := IssueToken(s.cfg, user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	log.Printf("[auth] Account activated: %s (%s)", user.Email, user.ID)
	return user, jwtToken, nil
}

// ============================================================================
// 登录
// ============================================================================

// Login 校验凭证并签发身份令牌
//
// requireActivated 为 true 时（页面端）未激活账号返回 ErrNotActivated。
// 失败计数写入限流器，窗口期内超过上限返回 ErrThrottled。
func (s *Service) Login(ctx context.Context, email, password string, requireActivated bool) (*model.User, string, error) {
	email = model.NormalizeEmail(email)

	if s.throttle != nil {
		attempts, err := s.throttle.LoginAttempts(ctx, email)
		if err != nil {
			log.Printf("[auth.login] throttle check error: %v", err)
		} else if attempts >= int64(s.cfg.LoginMaxTries) {
			return nil, "", ErrThrottled
		}
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return nil, "", ErrInvalidCredentials
	}
	if requireActivated && !user.Activated {
		return nil, "", ErrNotActivated
	}

	token, err := IssueToken(s.cfg, user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.ClearLoginFailures(ctx, email); err != nil {
			log.Printf("[auth.login] throttle clear error: %v", err)
		}
	}

	log.Printf("[auth] User logged in: %s", user.Email)
	return user, token, nil
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if _, err := s.throttle.RecordLoginFailure(ctx, email, s.cfg.LoginWindow); err != nil {
		log.Printf("[auth.login] throttle record error: %v", err)
	}
}

// ============================================================================
// 密码重置
// ============================================================================

// StartPasswordReset 生成重置令牌并发送重置邮件
func (s *Service) StartPasswordReset(ctx context.Context, email string) (model.ValidationErrors, error) {
	email = model.NormalizeEmail(email)

	var errs model.ValidationErrors
	model.ValidateEmail(&errs, email)
	if !errs.Empty() {
		return errs, nil
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		errs.Add("email", "Email address not found.")
		return errs, nil
	}

	token := RandomToken(lifecycleTokenLen)
	if err := s.store.SetResetToken(ctx, user.ID, token, time.Now()); err != nil {
		return nil, fmt.Errorf("set reset token: %w", err)
	}

	msg, err := mailer.ResetPasswordEmail(s.cfg.BaseURL, user.Email, token)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		return nil, fmt.Errorf("send reset email: %w", err)
	}

	log.Printf("[auth] Password reset requested: %s", user.Email)
	return nil, nil
}

// ResetPassword 校验重置令牌并更新密码，成功时签发身份令牌
//
// 重置链接自下发起 cfg.ResetTokenTTL 内有效，超时一毫秒也会被拒绝。
func (s *Service) ResetPassword(ctx context.Context, email, token, password, confirm string) (*model.User, string, model.ValidationErrors, error) {
	email = model.NormalizeEmail(email)

	var errs model.ValidationErrors
	model.ValidatePassword(&errs, password, true, confirm)
	if email == "" || token == "" {
		errs.Add("token", "Reset email or token is invalid.")
		return nil, "", errs, nil
	}

	user, err := s.store.GetUserByEmailAndResetToken(ctx, email, token)
	if err != nil {
		return nil, "", nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		errs.Add("token", "Reset email or token is invalid.")
		return nil, "", errs, nil
	}
	if user.ResetSentAt == nil || time.Since(*user.ResetSentAt) > s.cfg.ResetTokenTTL {
		errs.Add("token", "Password reset has expired.")
		return nil, "", errs, nil
	}
	if !errs.Empty() {
		return nil, "", errs, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return nil, "", nil, fmt.Errorf("update password: %w", err)
	}
	if err := s.store.ClearResetToken(ctx, user.ID); err != nil {
		log.Printf("[auth.reset] clear reset token error: %v", err)
	}

	jwtToken, err := IssueToken(s.cfg, user)
	if err != nil {
		return nil, "", nil, fmt.Errorf("issue token: %w", err)
	}

	log.Printf("[auth] Password reset: %s", user.Email)
	return user, jwtToken, nil, nil
}

// ============================================================================
// Admin Bootstrap
// ============================================================================

// EnsureAdminUser 确保管理员用户存在（启动时调用）
// 如果配置了 adminEmail 且数据库中不存在该用户，则自动创建
func EnsureAdminUser(store UserStore, adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	ctx := context.Background()
	adminEmail = model.NormalizeEmail(adminEmail)
	existing, err := store.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		log.Printf("[auth] Admin user already exists: %s (%s)", adminEmail, existing.ID)
		return nil
	}

	hash, err := HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           generateID("usr"),
		Username:     "Admin",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
		Activated:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("[auth] Created admin user: %s (%s)", adminEmail, user.ID)
	return nil
}
