package auth

import (
	"log"
	"net/http"
	"strings"

	"articles-cms/internal/shared/model"
)

// Middleware 认证中间件：从请求提取身份令牌并执行角色/归属检查
//
// 令牌优先从 Authorization: Bearer 头读取（API 端），
// 缺失时回退到 jwt cookie（页面端）。
//
// RequireAdmin 和 RequireOwner 都会按 id 重新读取用户记录：
// 令牌内嵌的角色只作为初筛，最终以存储中的实时记录为准，
// 被删除或降级的账号即使持有未过期令牌也无法通过检查。
type Middleware struct {
	cfg   Config
	store UserStore
}

// NewMiddleware 创建认证中间件
func NewMiddleware(cfg Config, store UserStore) *Middleware {
	return &Middleware{cfg: cfg, store: store}
}

// extractToken 从请求提取令牌字符串，找不到时返回空串
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Identify 尝试解析请求中的令牌并注入 context，不强制认证
//
// 文章列表等接口用它区分匿名访客和已登录用户。
func (m *Middleware) Identify(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := extractToken(r); token != "" {
			if user, err := ParseToken(m.cfg, token); err == nil {
				r = r.WithContext(WithAuthUser(r.Context(), user))
			}
		}
		next(w, r)
	}
}

// RequireAuth 要求有效身份令牌，缺失或校验失败返回 401
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		user, err := ParseToken(m.cfg, token)
		if err != nil {
			log.Printf("[auth] token parse error: %v", err)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r.WithContext(WithAuthUser(r.Context(), user)))
	}
}

// RequireAdmin 要求实时用户记录存在且角色为 admin，否则返回 401
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		authUser := GetAuthUser(r.Context())
		current, err := m.store.GetUserByID(r.Context(), authUser.ID)
		if err != nil {
			log.Printf("[auth] admin check error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if current == nil || current.Role != model.UserRoleAdmin {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	})
}

// RequireOwner 要求路径参数 {id} 等于认证身份的 id 且记录仍然存在，否则返回 403
func (m *Middleware) RequireOwner(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		authUser := GetAuthUser(r.Context())
		if r.PathValue("id") != authUser.ID {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		current, err := m.store.GetUserByID(r.Context(), authUser.ID)
		if err != nil {
			log.Printf("[auth] owner check error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if current == nil {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r)
	})
}
