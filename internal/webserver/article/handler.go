// Package article 文章管理 JSON API：增删改查与附件上传下载
package article

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"articles-cms/internal/shared/model"
	"articles-cms/internal/shared/storage"
	"articles-cms/internal/webserver/auth"
)

// 附件上传大小上限
const maxAttachmentSize = 10 << 20 // 10 MiB

// Store 文章存储接口
type Store interface {
	CreateArticle(ctx context.Context, article *model.Article) error
	GetArticleByID(ctx context.Context, id string) (*model.Article, error)
	ListArticles(ctx context.Context, publishedOnly bool) ([]*model.Article, error)
	UpdateArticle(ctx context.Context, id string, article *model.Article) error
	AddArticleAttachment(ctx context.Context, id string, att model.Attachment) error
	DeleteArticle(ctx context.Context, id string) error
}

// ObjectStore 附件对象存储接口，由 MinIO 客户端实现；nil 表示附件功能关闭
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Handler 文章 JSON API 处理器
type Handler struct {
	store   Store
	mw      *auth.Middleware
	objects ObjectStore
}

// NewHandler 创建文章处理器；objects 传 nil 时附件接口返回 503
func NewHandler(store Store, mw *auth.Middleware, objects ObjectStore) *Handler {
	return &Handler{store: store, mw: mw, objects: objects}
}

// RegisterRoutes 注册文章相关路由
//
// 读接口对匿名访客开放（只看到已发布的文章），写接口要求认证。
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/articles", h.mw.Identify(h.List))
	mux.HandleFunc("GET /api/articles/{id}", h.mw.Identify(h.Get))
	mux.HandleFunc("POST /api/articles", h.mw.RequireAuth(h.Create))
	mux.HandleFunc("PUT /api/articles/{id}", h.mw.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/articles/{id}", h.mw.RequireAuth(h.Delete))
	mux.HandleFunc("POST /api/articles/{id}/attachments", h.mw.RequireAuth(h.UploadAttachment))
	mux.HandleFunc("GET /api/articles/{id}/attachments/{att}", h.mw.Identify(h.DownloadAttachment))
}

// ============================================================================
// 请求类型
// ============================================================================

type articleRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// ============================================================================
// CRUD
// ============================================================================

// List 文章列表，匿名访客只看到已发布的文章
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	publishedOnly := auth.GetAuthUser(r.Context()) == nil

	articles, err := h.store.ListArticles(r.Context(), publishedOnly)
	if err != nil {
		log.Printf("[article.list] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// Get 文章详情；未发布的文章对匿名访客表现为不存在
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	article, ok := h.visibleArticle(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// Create 创建文章
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs model.ValidationErrors
	title, content := model.ValidateArticle(&errs, req.Title, req.Content)
	if !errs.Empty() {
		writeValidation(w, req, errs)
		return
	}

	now := time.Now()
	article := &model.Article{
		ID:        generateID("art"),
		Slug:      model.MakeSlug(title),
		Title:     title,
		Content:   content,
		Published: req.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateArticle(r.Context(), article); err != nil {
		log.Printf("[article.create] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("[article] Created: %s (%s)", article.Title, article.ID)
	writeJSON(w, http.StatusCreated, article)
}

// Update 更新文章（title/content/published 白名单，slug 随标题重新派生）
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	article, err := h.store.GetArticleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[article.update] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "Article not found.")
		return
	}

	var errs model.ValidationErrors
	title, content := model.ValidateArticle(&errs, req.Title, req.Content)
	if !errs.Empty() {
		writeValidation(w, req, errs)
		return
	}

	article.Title = title
	article.Slug = model.MakeSlug(title)
	article.Content = content
	article.Published = req.Published
	article.UpdatedAt = time.Now()

	if err := h.store.UpdateArticle(r.Context(), article.ID, article); err != nil {
		log.Printf("[article.update] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("[article] Updated: %s (%s)", article.Title, article.ID)
	writeJSON(w, http.StatusOK, article)
}

// Delete 删除文章及其附件，成功返回 204
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	article, err := h.store.GetArticleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[article.delete] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "Article not found.")
		return
	}

	if err := h.store.DeleteArticle(r.Context(), article.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Article not found.")
			return
		}
		log.Printf("[article.delete] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// 附件清理失败不影响删除结果，对象存储里残留的孤儿对象可以事后清理
	if h.objects != nil {
		for _, att := range article.Attachments {
			if err := h.objects.Delete(r.Context(), att.Key); err != nil {
				log.Printf("[article.delete] delete attachment %s: %v", att.Key, err)
			}
		}
	}

	log.Printf("[article] Deleted: %s (%s)", article.Title, article.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// 附件
// ============================================================================

// UploadAttachment 上传文章附件（multipart 表单的 file 字段）
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	if h.objects == nil {
		writeError(w, http.StatusServiceUnavailable, "attachment storage is not configured")
		return
	}

	article, err := h.store.GetArticleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[article.attach] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "Article not found.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	att := model.Attachment{
		Key:         article.ID + "/" + generateID("att"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		UploadedAt:  time.Now(),
	}

	if err := h.objects.Upload(r.Context(), att.Key, file, header.Size, att.ContentType); err != nil {
		log.Printf("[article.attach] upload error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.store.AddArticleAttachment(r.Context(), article.ID, att); err != nil {
		log.Printf("[article.attach] record error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("[article] Attachment uploaded: %s -> %s", att.Filename, att.Key)
	writeJSON(w, http.StatusCreated, att)
}

// DownloadAttachment 下载文章附件；未发布文章的附件对匿名访客不可见
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	if h.objects == nil {
		writeError(w, http.StatusServiceUnavailable, "attachment storage is not configured")
		return
	}

	article, ok := h.visibleArticle(w, r)
	if !ok {
		return
	}

	want := article.ID + "/" + r.PathValue("att")
	var found *model.Attachment
	for i := range article.Attachments {
		if article.Attachments[i].Key == want {
			found = &article.Attachments[i]
			break
		}
	}
	if found == nil {
		writeError(w, http.StatusNotFound, "Attachment not found.")
		return
	}

	obj, err := h.objects.Download(r.Context(), found.Key)
	if err != nil {
		log.Printf("[article.attach] download error: %v", err)
		writeError(w, http.StatusNotFound, "Attachment not found.")
		return
	}
	defer obj.Close()

	contentType := found.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(found.Filename, `"`, "")+`"`)
	if _, err := io.Copy(w, obj); err != nil {
		log.Printf("[article.attach] stream error: %v", err)
	}
}

// visibleArticle 按 id 读取文章并执行可见性检查，失败时已写好响应
func (h *Handler) visibleArticle(w http.ResponseWriter, r *http.Request) (*model.Article, bool) {
	article, err := h.store.GetArticleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[article.get] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if article == nil || (!article.Published && auth.GetAuthUser(r.Context()) == nil) {
		writeError(w, http.StatusNotFound, "Article not found.")
		return nil, false
	}
	return article, true
}
