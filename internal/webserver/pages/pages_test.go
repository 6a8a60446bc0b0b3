package pages

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"articles-cms/internal/mailer"
	"articles-cms/internal/shared/model"
	"articles-cms/internal/shared/storage"
	"articles-cms/internal/webserver/auth"
	"articles-cms/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// 测试用内存实现
// ============================================================================

type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	articles map[string]*model.Article
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*model.User{}, articles: map[string]*model.Article{}}
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return storage.ErrDuplicate
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) GetUserByEmailAndResetToken(_ context.Context, email, token string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.ResetToken == token && token != "" {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateUserProfile(_ context.Context, id, username, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Username = username
	u.Email = email
	return nil
}

func (f *fakeStore) UpdateUserPassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) ActivateUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Activated = true
	u.ActivationToken = ""
	return nil
}

func (f *fakeStore) SetResetToken(_ context.Context, id, token string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.ResetToken = token
	u.ResetSentAt = &sentAt
	return nil
}

func (f *fakeStore) ClearResetToken(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.ResetToken = ""
	u.ResetSentAt = nil
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) CreateArticle(_ context.Context, article *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *article
	f.articles[article.ID] = &cp
	return nil
}

func (f *fakeStore) GetArticleByID(_ context.Context, id string) (*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.articles[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) ListArticles(_ context.Context, publishedOnly bool) ([]*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Article
	for _, a := range f.articles {
		if publishedOnly && !a.Published {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) UpdateArticle(_ context.Context, id string, article *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.Title = article.Title
	a.Slug = article.Slug
	a.Content = article.Content
	a.Published = article.Published
	return nil
}

func (f *fakeStore) AddArticleAttachment(_ context.Context, id string, att model.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.Attachments = append(a.Attachments, att)
	return nil
}

func (f *fakeStore) DeleteArticle(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.articles, id)
	return nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) last() *mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return &m.sent[len(m.sent)-1]
}

// ============================================================================
// 辅助函数
// ============================================================================

func testConfig() auth.Config {
	return auth.Config{
		Secret:        "test-secret",
		TokenTTL:      time.Hour,
		ResetTokenTTL: 2 * time.Hour,
		BaseURL:       "http://localhost:3000",
	}
}

type testApp struct {
	mux     *http.ServeMux
	store   *fakeStore
	mail    *captureMailer
	objects *fakeObjectStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := newFakeStore()
	mail := &captureMailer{}
	objects := newFakeObjectStore()
	svc := auth.NewService(store, mail, nil, testConfig())
	mw := auth.NewMiddleware(testConfig(), store)

	templateFS, err := web.TemplateFS()
	require.NoError(t, err)
	h, err := NewHandler(svc, store, store, mw, objects, templateFS)
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return &testApp{mux: mux, store: store, mail: mail, objects: objects}
}

func (a *testApp) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, r)
	return w
}

func (a *testApp) postForm(t *testing.T, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, r)
	return w
}

func (a *testApp) seedUser(t *testing.T, id, username, email string, role model.UserRole) string {
	t.Helper()
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	err = a.store.CreateUser(context.Background(), &model.User{
		ID: id, Username: username, Email: email,
		PasswordHash: hash, Role: role, Activated: true,
	})
	require.NoError(t, err)

	token, err := auth.IssueToken(testConfig(), &model.User{ID: id, Username: username, Role: role})
	require.NoError(t, err)
	return token
}

func (a *testApp) seedArticle(t *testing.T, id, title string, published bool) {
	t.Helper()
	require.NoError(t, a.store.CreateArticle(context.Background(), &model.Article{
		ID: id, Slug: model.MakeSlug(title), Title: title, Content: "some content", Published: published,
	}))
}

func cookieValue(w *httptest.ResponseRecorder, name string) (string, bool) {
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			return c.Value, true
		}
	}
	return "", false
}

// ============================================================================
// 首页与文章页
// ============================================================================

func TestHomePage(t *testing.T) {
	app := newTestApp(t)
	token := app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)
	app.seedArticle(t, "art-1", "Public Post", true)
	app.seedArticle(t, "art-2", "Hidden Draft", false)

	t.Run("anonymous sees published only", func(t *testing.T) {
		w := app.get(t, "/", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Public Post")
		assert.NotContains(t, w.Body.String(), "Hidden Draft")
		assert.Contains(t, w.Body.String(), "Log in")
	})

	t.Run("logged in sees drafts and nav changes", func(t *testing.T) {
		w := app.get(t, "/", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Hidden Draft")
		assert.Contains(t, w.Body.String(), "alice")
		assert.Contains(t, w.Body.String(), "Log out")
	})
}

func TestArticleListPage(t *testing.T) {
	app := newTestApp(t)
	app.seedArticle(t, "art-1", "Public Post", true)
	app.seedArticle(t, "art-2", "Hidden Draft", false)

	w := app.get(t, "/articles", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Public Post")
	assert.NotContains(t, w.Body.String(), "Hidden Draft")
}

func TestAboutPage(t *testing.T) {
	app := newTestApp(t)

	w := app.get(t, "/about", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A small publishing site")
}

func TestArticlePage(t *testing.T) {
	app := newTestApp(t)
	token := app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)
	app.seedArticle(t, "art-1", "Hello World", true)
	app.seedArticle(t, "art-2", "Secret Draft", false)

	t.Run("published article renders", func(t *testing.T) {
		w := app.get(t, "/articles/art-1/hello-world", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Hello World")
	})

	t.Run("works without slug too", func(t *testing.T) {
		w := app.get(t, "/articles/art-1", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("draft is 404 for anonymous", func(t *testing.T) {
		w := app.get(t, "/articles/art-2", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("draft renders when logged in", func(t *testing.T) {
		w := app.get(t, "/articles/art-2", token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestArticleForms(t *testing.T) {
	app := newTestApp(t)
	token := app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)

	t.Run("create form requires login", func(t *testing.T) {
		w := app.get(t, "/articles/create", "")
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/auth/login", w.Header().Get("Location"))
	})

	var articleURL string

	t.Run("create", func(t *testing.T) {
		w := app.postForm(t, "/articles/create", token, url.Values{
			"title":     {"My First Post"},
			"content":   {"Hello from the page surface"},
			"published": {"true"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)
		articleURL = w.Header().Get("Location")
		assert.Contains(t, articleURL, "/my-first-post")
		assert.Len(t, app.store.articles, 1)
	})

	t.Run("validation re-renders with input preserved", func(t *testing.T) {
		w := app.postForm(t, "/articles/create", token, url.Values{
			"title":   {"Fine Title"},
			"content": {"x"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Article content must be at least 3 characters.")
		assert.Contains(t, w.Body.String(), "Fine Title")
		assert.Len(t, app.store.articles, 1)
	})

	t.Run("update", func(t *testing.T) {
		id := strings.Split(strings.TrimPrefix(articleURL, "/articles/"), "/")[0]
		w := app.postForm(t, "/articles/"+id+"/update", token, url.Values{
			"title":   {"Renamed Post"},
			"content": {"Edited content"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "/renamed-post")
		assert.Equal(t, "Renamed Post", app.store.articles[id].Title)
		assert.False(t, app.store.articles[id].Published)
	})

	t.Run("delete", func(t *testing.T) {
		id := strings.Split(strings.TrimPrefix(articleURL, "/articles/"), "/")[0]
		w := app.postForm(t, "/articles/"+id+"/delete", token, nil)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Empty(t, app.store.articles)
	})
}

func TestArticleDeleteConfirmation(t *testing.T) {
	app := newTestApp(t)
	token := app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)
	app.seedArticle(t, "art-1", "Doomed Post", true)

	t.Run("requires login", func(t *testing.T) {
		w := app.get(t, "/articles/art-1/delete", "")
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/auth/login", w.Header().Get("Location"))
	})

	t.Run("renders confirmation form", func(t *testing.T) {
		w := app.get(t, "/articles/art-1/delete", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Doomed Post")
		assert.Contains(t, w.Body.String(), `action="/articles/art-1/delete"`)
	})
}

// TestArticleDeleteCleansAttachments 页面端删除同样清理对象存储里的附件
func TestArticleDeleteCleansAttachments(t *testing.T) {
	app := newTestApp(t)
	token := app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)
	app.seedArticle(t, "art-1", "With Files", true)

	key := "art-1/att-cover"
	require.NoError(t, app.objects.Upload(context.Background(), key, strings.NewReader("png bytes"), 9, "image/png"))
	require.NoError(t, app.store.AddArticleAttachment(context.Background(), "art-1", model.Attachment{
		Key: key, Filename: "cover.png", ContentType: "image/png", Size: 9,
	}))

	w := app.postForm(t, "/articles/art-1/delete", token, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, app.store.articles)
	assert.Empty(t, app.objects.objects, "attachment objects should be removed with the article")
}

// ============================================================================
// 账号生命周期页
// ============================================================================

var linkRe = regexp.MustCompile(`email=([^&"]+)&(?:amp;)?token=([^&"]+)`)

func TestSignupActivateLoginFlow(t *testing.T) {
	app := newTestApp(t)

	t.Run("form renders", func(t *testing.T) {
		w := app.get(t, "/auth/signup", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="passwordConfirmation"`)
	})

	t.Run("validation preserves input except passwords", func(t *testing.T) {
		w := app.postForm(t, "/auth/signup", "", url.Values{
			"username":             {"alice"},
			"email":                {"alice@example.com"},
			"password":             {"secret1"},
			"passwordConfirmation": {"different"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Password confirmation does not match password.")
		assert.Contains(t, w.Body.String(), `value="alice"`)
		assert.NotContains(t, w.Body.String(), "secret1")
	})

	t.Run("signup sends activation email", func(t *testing.T) {
		w := app.postForm(t, "/auth/signup", "", url.Values{
			"username":             {"alice"},
			"email":                {"alice@example.com"},
			"password":             {"secret1"},
			"passwordConfirmation": {"secret1"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/auth/login", w.Header().Get("Location"))
		require.NotNil(t, app.mail.last())
	})

	t.Run("login before activation is rejected", func(t *testing.T) {
		w := app.postForm(t, "/auth/login", "", url.Values{
			"email":    {"alice@example.com"},
			"password": {"secret1"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Please activate your account first.")
	})

	t.Run("activation link logs the user in", func(t *testing.T) {
		m := linkRe.FindStringSubmatch(app.mail.last().HTML)
		require.Len(t, m, 3, "activation link not found in email")
		email, _ := url.QueryUnescape(m[1])
		token, _ := url.QueryUnescape(m[2])

		w := app.get(t, "/auth/activate-account?email="+url.QueryEscape(email)+"&token="+url.QueryEscape(token), "")
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		jwt, ok := cookieValue(w, auth.CookieName)
		require.True(t, ok, "jwt cookie should be set")
		assert.NotEmpty(t, jwt)
	})

	t.Run("login works after activation", func(t *testing.T) {
		w := app.postForm(t, "/auth/login", "", url.Values{
			"email":    {"alice@example.com"},
			"password": {"secret1"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)
		_, ok := cookieValue(w, auth.CookieName)
		assert.True(t, ok)
	})

	t.Run("wrong password re-renders with single generic message", func(t *testing.T) {
		w := app.postForm(t, "/auth/login", "", url.Values{
			"email":    {"alice@example.com"},
			"password": {"wrong"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Email or Password are incorrect.")
	})
}

func TestLogoutPage(t *testing.T) {
	app := newTestApp(t)
	token := app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)

	w := app.get(t, "/auth/logout", token)
	require.Equal(t, http.StatusSeeOther, w.Code)

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "jwt cookie should be cleared")
}

func TestPasswordResetFlow(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)

	t.Run("unknown email re-renders", func(t *testing.T) {
		w := app.postForm(t, "/auth/forgot-password", "", url.Values{"email": {"nobody@example.com"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Email address not found.")
	})

	t.Run("known email sends reset link", func(t *testing.T) {
		w := app.postForm(t, "/auth/forgot-password", "", url.Values{"email": {"alice@example.com"}})
		require.Equal(t, http.StatusSeeOther, w.Code)
		require.NotNil(t, app.mail.last())
		assert.Contains(t, app.mail.last().HTML, "reset-password")
	})

	t.Run("reset form carries email and token from the link", func(t *testing.T) {
		w := app.get(t, "/auth/reset-password?email=alice%40example.com&token=abc123", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="abc123"`)
	})

	t.Run("reset updates password and logs in", func(t *testing.T) {
		m := linkRe.FindStringSubmatch(app.mail.last().HTML)
		require.Len(t, m, 3)
		email, _ := url.QueryUnescape(m[1])
		token, _ := url.QueryUnescape(m[2])

		w := app.postForm(t, "/auth/reset-password", "", url.Values{
			"email":                {email},
			"token":                {token},
			"password":             {"newpass1"},
			"passwordConfirmation": {"newpass1"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)
		_, ok := cookieValue(w, auth.CookieName)
		assert.True(t, ok)

		login := app.postForm(t, "/auth/login", "", url.Values{
			"email":    {"alice@example.com"},
			"password": {"newpass1"},
		})
		assert.Equal(t, http.StatusSeeOther, login.Code)
	})
}

// ============================================================================
// 用户页
// ============================================================================

func TestUserPages(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.seedUser(t, "usr-admin", "admin", "admin@example.com", model.UserRoleAdmin)
	token := app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)

	t.Run("user list admin only", func(t *testing.T) {
		w := app.get(t, "/users", adminToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")

		denied := app.get(t, "/users", token)
		assert.Equal(t, http.StatusForbidden, denied.Code)
	})

	t.Run("profile form prefills", func(t *testing.T) {
		w := app.get(t, "/users/usr-1/update", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="alice"`)
		assert.Contains(t, w.Body.String(), `value="alice@example.com"`)
	})

	t.Run("cannot open someone else's profile", func(t *testing.T) {
		w := app.get(t, "/users/usr-admin/update", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("profile update", func(t *testing.T) {
		w := app.postForm(t, "/users/usr-1/update", token, url.Values{
			"username": {"alice2"},
			"email":    {"alice2@example.com"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "alice2", app.store.users["usr-1"].Username)
	})

	t.Run("taken email re-renders", func(t *testing.T) {
		w := app.postForm(t, "/users/usr-1/update", token, url.Values{
			"username": {"alice2"},
			"email":    {"admin@example.com"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Email is already in use.")
	})

	t.Run("delete own account", func(t *testing.T) {
		w := app.postForm(t, "/users/usr-1/delete", token, nil)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.NotContains(t, app.store.users, "usr-1")
	})
}

func TestUserDetailPage(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.seedUser(t, "usr-admin", "admin", "admin@example.com", model.UserRoleAdmin)
	token := app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)

	t.Run("own profile renders", func(t *testing.T) {
		w := app.get(t, "/users/usr-1", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")
		assert.Contains(t, w.Body.String(), "/users/usr-1/update")
	})

	t.Run("admin can view anyone", func(t *testing.T) {
		w := app.get(t, "/users/usr-1", adminToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")
	})

	t.Run("standard user cannot view others", func(t *testing.T) {
		w := app.get(t, "/users/usr-admin", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := app.get(t, "/users/usr-gone", adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("anonymous is redirected to login", func(t *testing.T) {
		w := app.get(t, "/users/usr-1", "")
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/auth/login", w.Header().Get("Location"))
	})
}

func TestUserDeleteConfirmation(t *testing.T) {
	app := newTestApp(t)
	token := app.seedUser(t, "usr-1", "alice", "alice@example.com", model.UserRoleStandard)

	t.Run("renders confirmation form", func(t *testing.T) {
		w := app.get(t, "/users/usr-1/delete", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")
		assert.Contains(t, w.Body.String(), `action="/users/usr-1/delete"`)
	})

	t.Run("cannot open someone else's confirmation", func(t *testing.T) {
		w := app.get(t, "/users/usr-other/delete", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
