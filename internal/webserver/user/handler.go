// Package user 用户管理 JSON API：管理员的用户列表/详情，本人的资料更新与注销
package user

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"articles-cms/internal/shared/model"
	"articles-cms/internal/shared/storage"
	"articles-cms/internal/webserver/auth"
)

// Store 用户存储接口，在认证包的基础上追加列表和删除
type Store interface {
	auth.UserStore
	UpdateUserProfile(ctx context.Context, id, username, email string) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Handler 用户 JSON API 处理器
type Handler struct {
	store Store
	mw    *auth.Middleware
}

// NewHandler 创建用户处理器
func NewHandler(store Store, mw *auth.Middleware) *Handler {
	return &Handler{store: store, mw: mw}
}

// RegisterRoutes 注册用户相关路由
//
// 列表/详情仅限管理员；更新和注销仅限本人（路径 id 必须等于令牌身份）。
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.mw.RequireAdmin(h.List))
	mux.HandleFunc("GET /api/users/{id}", h.mw.RequireAdmin(h.Get))
	mux.HandleFunc("PUT /api/users/{id}", h.mw.RequireOwner(h.Update))
	mux.HandleFunc("DELETE /api/users/{id}", h.mw.RequireOwner(h.Delete))
}

// ============================================================================
// 请求类型
// ============================================================================

// updateRequest 本人资料更新；password 留空表示不改密码
type updateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ============================================================================
// Handlers
// ============================================================================

// List 用户列表（仅管理员），返回公开视图
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[user.list] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	writeJSON(w, http.StatusOK, out)
}

// Get 用户详情（仅管理员）
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[user.get] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found.")
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

// Update 本人资料更新（username/email 白名单，password 选填）
//
// 换邮箱时重新检查唯一性，撞上别人的邮箱返回与注册一致的校验错误。
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.store.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[user.update] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "User not found.")
		return
	}

	email := model.NormalizeEmail(req.Email)
	var errs model.ValidationErrors
	model.ValidateUsername(&errs, req.Username)
	model.ValidateEmail(&errs, email)
	if req.Password != "" {
		model.ValidatePassword(&errs, req.Password, false, "")
	}

	if email != "" && email != current.Email {
		existing, err := h.store.GetUserByEmail(r.Context(), email)
		if err != nil {
			log.Printf("[user.update] GetUserByEmail error: %v", err)
		} else if existing != nil {
			errs.Add("email", "Email is already in use.")
		}
	}
	if !errs.Empty() {
		writeValidation(w, map[string]string{"username": req.Username, "email": req.Email}, errs)
		return
	}

	if err := h.store.UpdateUserProfile(r.Context(), current.ID, req.Username, email); err != nil {
		// 并发改邮箱撞上唯一索引，同样转换为校验错误
		if errors.Is(err, storage.ErrDuplicate) {
			errs.Add("email", "Email is already in use.")
			writeValidation(w, map[string]string{"username": req.Username, "email": req.Email}, errs)
			return
		}
		log.Printf("[user.update] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Printf("[user.update] hash error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := h.store.UpdateUserPassword(r.Context(), current.ID, hash); err != nil {
			log.Printf("[user.update] password error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	current.Username = req.Username
	current.Email = email

	log.Printf("[user] Profile updated: %s (%s)", current.Email, current.ID)
	writeJSON(w, http.StatusOK, current.Public())
}

// Delete 本人注销账号，成功返回 204 并清除登录 cookie
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found.")
			return
		}
		log.Printf("[user.delete] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	auth.ClearTokenCookie(w)
	log.Printf("[user] Account deleted: %s", id)
	w.WriteHeader(http.StatusNoContent)
}
