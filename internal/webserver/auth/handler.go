package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// Handler 认证 JSON API 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建认证处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/logout", h.Logout)
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenUser 令牌响应中内嵌的用户视图
type tokenUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string    `json:"token"`
	User  tokenUser `json:"user"`
}

// ============================================================================
// Handlers
// ============================================================================

// Signup 用户注册（API 端无激活步骤，立即签发令牌）
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, errs, err := h.svc.SignupImmediate(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		log.Printf("[auth.signup] error: %v", err)
		writeError(w, http.StatusInternalServerError, "Signup failed.")
		return
	}
	if !errs.Empty() {
		writeValidation(w, map[string]string{"username": req.Username, "email": req.Email}, errs)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  tokenUser{ID: user.ID, Username: user.Username, Role: string(user.Role)},
	})
}

// Login 用户登录
//
// 未知邮箱和密码错误返回完全相同的消息，避免暴露哪一项出错。
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password, false)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Email or Password are incorrect.")
		case errors.Is(err, ErrThrottled):
			writeError(w, http.StatusTooManyRequests, "Too many login attempts. Try again later.")
		default:
			log.Printf("[auth.login] error: %v", err)
			writeError(w, http.StatusInternalServerError, "Log in failed.")
		}
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  tokenUser{ID: user.ID, Username: user.Username, Role: string(user.Role)},
	})
}

// Logout 登出：清除 cookie；令牌本身无法吊销，过期前仍然有效
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearTokenCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
