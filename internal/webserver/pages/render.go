package pages

import (
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"

	"articles-cms/internal/shared/model"
	"articles-cms/internal/webserver/auth"
)

// flashCookie 一次性提示消息，渲染后即清除
const flashCookie = "flash"

// viewData 传给页面模板的数据
type viewData struct {
	Title  string
	User   *auth.AuthUser
	Flash  string
	Errors model.ValidationErrors
	Form   map[string]string

	Articles []*model.Article
	Article  *model.Article
	Users    []model.PublicUser
	Profile  *model.PublicUser
}

// 每个页面由 layout + 自身的 content 块组成
var pageFiles = []string{
	"home.html",
	"about.html",
	"article.html",
	"article-form.html",
	"article-delete.html",
	"signup.html",
	"login.html",
	"forgot-password.html",
	"reset-password.html",
	"users.html",
	"user.html",
	"user-form.html",
	"user-delete.html",
}

// parseTemplates 预解析全部页面模板
func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		t, err := template.ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, err
		}
		out[page] = t
	}
	return out, nil
}

// render 渲染页面并弹出 flash 消息
func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data viewData) {
	if data.User == nil {
		data.User = auth.GetAuthUser(r.Context())
	}
	if data.Flash == "" {
		data.Flash = popFlash(w, r)
	}
	if data.Form == nil {
		data.Form = map[string]string{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates[page].ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("[pages] render %s: %v", page, err)
	}
}

// setFlash 写入一次性提示消息
func setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

// popFlash 读取并清除 flash 消息
func popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	message, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return message
}
