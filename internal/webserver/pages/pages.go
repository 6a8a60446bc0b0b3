// Package pages 服务端渲染的页面层
//
// 与 JSON API 共用同一套领域服务和存储，只在表现层不同：
// 身份通过 jwt cookie 传递，校验错误重新渲染表单（保留除密码外的输入），
// 操作结果通过一次性 flash 消息提示。
//
// 文件组织：
//   - pages.go: Handler 定义与路由注册
//   - render.go: 模板渲染、flash 消息
//   - authpages.go: 注册/登录/激活/密码重置页面
//   - articlepages.go: 文章页面
//   - userpages.go: 用户页面
package pages

import (
	"html/template"
	"io/fs"
	"net/http"

	"articles-cms/internal/webserver/article"
	"articles-cms/internal/webserver/auth"
	"articles-cms/internal/webserver/user"
)

// Handler 页面处理器
type Handler struct {
	svc       *auth.Service
	articles  article.Store
	users     user.Store
	mw        *auth.Middleware
	objects   article.ObjectStore
	templates map[string]*template.Template
}

// NewHandler 创建页面处理器；objects 传 nil 时删除文章不清理附件对象
func NewHandler(svc *auth.Service, articles article.Store, users user.Store, mw *auth.Middleware, objects article.ObjectStore, templateFS fs.FS) (*Handler, error) {
	templates, err := parseTemplates(templateFS)
	if err != nil {
		return nil, err
	}
	return &Handler{
		svc:       svc,
		articles:  articles,
		users:     users,
		mw:        mw,
		objects:   objects,
		templates: templates,
	}, nil
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	identify := h.mw.Identify

	// 首页与文章
	mux.HandleFunc("GET /{$}", identify(h.Home))
	mux.HandleFunc("GET /about", identify(h.About))
	mux.HandleFunc("GET /articles", identify(h.Home))
	mux.HandleFunc("GET /articles/create", identify(h.requireLogin(h.ArticleCreateForm)))
	mux.HandleFunc("POST /articles/create", identify(h.requireLogin(h.ArticleCreate)))
	mux.HandleFunc("GET /articles/{id}", identify(h.ArticleShow))
	mux.HandleFunc("GET /articles/{id}/{slug}", identify(h.ArticleShow))
	mux.HandleFunc("GET /articles/{id}/update", identify(h.requireLogin(h.ArticleUpdateForm)))
	mux.HandleFunc("POST /articles/{id}/update", identify(h.requireLogin(h.ArticleUpdate)))
	mux.HandleFunc("GET /articles/{id}/delete", identify(h.requireLogin(h.ArticleDeleteForm)))
	mux.HandleFunc("POST /articles/{id}/delete", identify(h.requireLogin(h.ArticleDelete)))

	// 账号生命周期
	mux.HandleFunc("GET /auth/signup", identify(h.SignupForm))
	mux.HandleFunc("POST /auth/signup", identify(h.Signup))
	mux.HandleFunc("GET /auth/login", identify(h.LoginForm))
	mux.HandleFunc("POST /auth/login", identify(h.Login))
	mux.HandleFunc("GET /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/activate-account", h.Activate)
	mux.HandleFunc("GET /auth/forgot-password", identify(h.ForgotPasswordForm))
	mux.HandleFunc("POST /auth/forgot-password", identify(h.ForgotPassword))
	mux.HandleFunc("GET /auth/reset-password", identify(h.ResetPasswordForm))
	mux.HandleFunc("POST /auth/reset-password", identify(h.ResetPassword))

	// 用户
	mux.HandleFunc("GET /users", identify(h.requireLogin(h.UserList)))
	mux.HandleFunc("GET /users/{id}", identify(h.requireLogin(h.UserShow)))
	mux.HandleFunc("GET /users/{id}/update", identify(h.requireLogin(h.UserUpdateForm)))
	mux.HandleFunc("POST /users/{id}/update", identify(h.requireLogin(h.UserUpdate)))
	mux.HandleFunc("GET /users/{id}/delete", identify(h.requireLogin(h.UserDeleteForm)))
	mux.HandleFunc("POST /users/{id}/delete", identify(h.requireLogin(h.UserDelete)))
}

// requireLogin 未登录访客重定向到登录页
//
// 与 API 端的 401 不同，页面端用 flash + 重定向引导用户登录。
func (h *Handler) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetAuthUser(r.Context()) == nil {
			setFlash(w, "Please log in first.")
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// requireOwnID 路径 {id} 必须是本人
func requireOwnID(w http.ResponseWriter, r *http.Request) (*auth.AuthUser, bool) {
	user := auth.GetAuthUser(r.Context())
	if user == nil || r.PathValue("id") != user.ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return user, true
}

// notFound 页面版 404
func notFound(w http.ResponseWriter) {
	http.Error(w, "Not Found", http.StatusNotFound)
}
