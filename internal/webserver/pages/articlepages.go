package pages

import (
	"log"
	"net/http"
	"time"

	"articles-cms/internal/shared/model"
	"articles-cms/internal/webserver/auth"
)

// ============================================================================
// 阅读
// ============================================================================

// Home 首页文章列表，匿名访客只看到已发布的文章
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	publishedOnly := auth.GetAuthUser(r.Context()) == nil

	articles, err := h.articles.ListArticles(r.Context(), publishedOnly)
	if err != nil {
		log.Printf("[pages.home] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "home.html", viewData{Title: "Home", Articles: articles})
}

// About 关于页
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "about.html", viewData{Title: "About"})
}

// ArticleShow 文章详情；未发布的文章对匿名访客表现为不存在
func (h *Handler) ArticleShow(w http.ResponseWriter, r *http.Request) {
	article, ok := h.loadVisibleArticle(w, r)
	if !ok {
		return
	}
	h.render(w, r, "article.html", viewData{Title: article.Title, Article: article})
}

// ============================================================================
// 编辑
// ============================================================================

// ArticleCreateForm 新建文章表单
func (h *Handler) ArticleCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "article-form.html", viewData{Title: "New Article"})
}

// ArticleCreate 处理新建文章
func (h *Handler) ArticleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := articleForm(r)

	var errs model.ValidationErrors
	title, content := model.ValidateArticle(&errs, form["title"], form["content"])
	if !errs.Empty() {
		h.render(w, r, "article-form.html", viewData{Title: "New Article", Errors: errs, Form: form})
		return
	}

	now := time.Now()
	article := &model.Article{
		ID:        generateID("art"),
		Slug:      model.MakeSlug(title),
		Title:     title,
		Content:   content,
		Published: form["published"] == "true",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.articles.CreateArticle(r.Context(), article); err != nil {
		log.Printf("[pages.article] create error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setFlash(w, "Article created.")
	http.Redirect(w, r, "/articles/"+article.ID+"/"+article.Slug, http.StatusSeeOther)
}

// ArticleUpdateForm 编辑文章表单，预填当前内容
func (h *Handler) ArticleUpdateForm(w http.ResponseWriter, r *http.Request) {
	article, ok := h.loadVisibleArticle(w, r)
	if !ok {
		return
	}

	published := ""
	if article.Published {
		published = "true"
	}
	h.render(w, r, "article-form.html", viewData{
		Title: "Edit Article",
		Form: map[string]string{
			"title":     article.Title,
			"content":   article.Content,
			"published": published,
		},
	})
}

// ArticleUpdate 处理文章更新
func (h *Handler) ArticleUpdate(w http.ResponseWriter, r *http.Request) {
	article, ok := h.loadVisibleArticle(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := articleForm(r)

	var errs model.ValidationErrors
	title, content := model.ValidateArticle(&errs, form["title"], form["content"])
	if !errs.Empty() {
		h.render(w, r, "article-form.html", viewData{Title: "Edit Article", Errors: errs, Form: form})
		return
	}

	article.Title = title
	article.Slug = model.MakeSlug(title)
	article.Content = content
	article.Published = form["published"] == "true"
	article.UpdatedAt = time.Now()

	if err := h.articles.UpdateArticle(r.Context(), article.ID, article); err != nil {
		log.Printf("[pages.article] update error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setFlash(w, "Article updated.")
	http.Redirect(w, r, "/articles/"+article.ID+"/"+article.Slug, http.StatusSeeOther)
}

// ArticleDeleteForm 删除确认页
func (h *Handler) ArticleDeleteForm(w http.ResponseWriter, r *http.Request) {
	article, ok := h.loadVisibleArticle(w, r)
	if !ok {
		return
	}
	h.render(w, r, "article-delete.html", viewData{Title: "Delete Article", Article: article})
}

// ArticleDelete 处理文章删除
func (h *Handler) ArticleDelete(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.GetArticleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[pages.article] delete error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if article == nil {
		notFound(w)
		return
	}

	if err := h.articles.DeleteArticle(r.Context(), article.ID); err != nil {
		log.Printf("[pages.article] delete error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// 附件清理失败不影响删除结果，对象存储里残留的孤儿对象可以事后清理
	if h.objects != nil {
		for _, att := range article.Attachments {
			if err := h.objects.Delete(r.Context(), att.Key); err != nil {
				log.Printf("[pages.article] delete attachment %s: %v", att.Key, err)
			}
		}
	}

	setFlash(w, "Article deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ============================================================================
// 辅助函数
// ============================================================================

// articleForm 提取文章表单字段
func articleForm(r *http.Request) map[string]string {
	return map[string]string{
		"title":     r.PostFormValue("title"),
		"content":   r.PostFormValue("content"),
		"published": r.PostFormValue("published"),
	}
}

// loadVisibleArticle 按 id 读取文章并执行可见性检查，失败时已写好响应
func (h *Handler) loadVisibleArticle(w http.ResponseWriter, r *http.Request) (*model.Article, bool) {
	article, err := h.articles.GetArticleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[pages.article] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if article == nil || (!article.Published && auth.GetAuthUser(r.Context()) == nil) {
		notFound(w)
		return nil, false
	}
	return article, true
}
