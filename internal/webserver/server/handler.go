// Package server 路由配置与核心基础设施
//
// 本文件定义 HTTP 路由，将请求分发到各领域独立包。
//
// 文件组织：
//   - handler.go: Handler 定义与路由注册
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"

	"articles-cms/api"
	"articles-cms/internal/config"
	"articles-cms/internal/mailer"
	"articles-cms/internal/webserver/article"
	"articles-cms/internal/webserver/auth"
	"articles-cms/internal/webserver/pages"
	"articles-cms/internal/webserver/user"
	"articles-cms/web"
)

// Store 组合各领域包需要的存储接口，由 MongoDB 存储层实现
type Store interface {
	user.Store
	article.Store
}

// Handler HTTP 入口
//
// 依赖说明：
//   - store: MongoDB 存储层（用户与文章）
//   - mail: 邮件投递（激活/重置邮件）
//   - throttle: 登录限流（Redis，nil 表示不限流）
//   - objects: 附件对象存储（MinIO，nil 表示附件功能关闭）
type Handler struct {
	cfg      *config.Config
	store    Store
	mail     mailer.Mailer
	throttle auth.Throttle
	objects  article.ObjectStore
	metrics  *Metrics
}

// NewHandler 创建 Handler 实例
func NewHandler(cfg *config.Config, store Store, mail mailer.Mailer, throttle auth.Throttle, objects article.ObjectStore) *Handler {
	return &Handler{
		cfg:      cfg,
		store:    store,
		mail:     mail,
		throttle: throttle,
		objects:  objects,
		metrics:  getMetrics(),
	}
}

// authConfig 从应用配置组装认证配置
func (h *Handler) authConfig() auth.Config {
	return auth.Config{
		Secret:        h.cfg.Secret,
		TokenTTL:      h.cfg.Auth.TokenTTL,
		ResetTokenTTL: h.cfg.Auth.ResetTokenTTL,
		LoginMaxTries: h.cfg.Auth.LoginMaxTries,
		LoginWindow:   h.cfg.Auth.LoginWindow,
		BaseURL:       h.cfg.BaseURL,
	}
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 基础设施:
//   - GET /health           - 服务健康检查
//   - GET /metrics          - Prometheus 指标
//   - GET /api/openapi.yaml - OpenAPI 文档
//   - GET /static/          - 页面静态资源
//
// 认证 (JSON API):
//   - POST /api/auth/signup - 注册（立即激活并签发令牌）
//   - POST /api/auth/login  - 登录
//   - GET  /api/auth/logout - 登出
//
// 文章 (JSON API):
//   - GET    /api/articles                       - 列出文章
//   - POST   /api/articles                       - 创建文章
//   - GET    /api/articles/{id}                  - 文章详情
//   - PUT    /api/articles/{id}                  - 更新文章
//   - DELETE /api/articles/{id}                  - 删除文章
//   - POST   /api/articles/{id}/attachments      - 上传附件
//   - GET    /api/articles/{id}/attachments/{att} - 下载附件
//
// 用户 (JSON API):
//   - GET    /api/users      - 列出用户（仅管理员）
//   - GET    /api/users/{id} - 用户详情（仅管理员）
//   - PUT    /api/users/{id} - 更新资料（仅本人）
//   - DELETE /api/users/{id} - 注销账号（仅本人）
//
// 页面：首页/关于、文章阅读/编辑/删除确认、注册/登录/激活/密码重置、
// 用户列表/详情/编辑/注销确认。
func (h *Handler) Router() (http.Handler, error) {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// OpenAPI 文档
	mux.HandleFunc("GET /api/openapi.yaml", h.OpenAPISpec)

	// 领域服务与中间件（API 层和页面层共用）
	authCfg := h.authConfig()
	svc := auth.NewService(h.store, h.mail, h.throttle, authCfg)
	mw := auth.NewMiddleware(authCfg, h.store)

	// 认证接口
	auth.NewHandler(svc).RegisterRoutes(mux)

	// 文章接口
	article.NewHandler(h.store, mw, h.objects).RegisterRoutes(mux)

	// 用户接口
	user.NewHandler(h.store, mw).RegisterRoutes(mux)

	// 页面层
	templateFS, err := web.TemplateFS()
	if err != nil {
		return nil, err
	}
	pageHandler, err := pages.NewHandler(svc, h.store, h.store, mw, h.objects, templateFS)
	if err != nil {
		return nil, err
	}
	pageHandler.RegisterRoutes(mux)

	// 静态资源
	staticFS, err := web.StaticFS()
	if err != nil {
		return nil, err
	}
	if staticFS != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
	}

	return h.metrics.MetricsMiddleware(mux), nil
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// OpenAPISpec 返回嵌入的 OpenAPI 文档
func (h *Handler) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	data, err := api.OpenAPIFS.ReadFile("openapi/openapi.yaml")
	if err != nil {
		http.Error(w, "spec not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}
