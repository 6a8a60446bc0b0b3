package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAPI(t *testing.T) (*http.ServeMux, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	svc := NewService(store, &captureMailer{}, nil, testConfig())
	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)
	return mux, store
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestAPISignup(t *testing.T) {
	mux, store := testAPI(t)

	t.Run("created", func(t *testing.T) {
		w := postJSON(t, mux, "/api/auth/signup", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Token string `json:"token"`
			User  struct {
				ID       string `json:"id"`
				Username string `json:"username"`
				Role     string `json:"role"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.User.ID)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, "standard", resp.User.Role)

		// 令牌立即可用，无需激活
		got, err := ParseToken(testConfig(), resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, got.ID)

		// 响应不包含密码相关字段
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("validation errors collected wholesale", func(t *testing.T) {
		w := postJSON(t, mux, "/api/auth/signup", map[string]string{
			"username": "",
			"email":    "not-an-email",
			"password": "x",
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			User   map[string]string `json:"user"`
			Errors []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Errors, 3)
		// 非敏感输入回显供表单重填
		assert.Equal(t, "not-an-email", resp.User["email"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := postJSON(t, mux, "/api/auth/signup", map[string]string{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "secret2",
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Email is already in use.")
		assert.Len(t, store.users, 1)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader([]byte("{nope")))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAPILogin(t *testing.T) {
	mux, _ := testAPI(t)

	w := postJSON(t, mux, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("success", func(t *testing.T) {
		w := postJSON(t, mux, "/api/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice", resp.User.Username)
	})

	t.Run("identical message for wrong password and unknown email", func(t *testing.T) {
		wrongPw := postJSON(t, mux, "/api/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		noUser := postJSON(t, mux, "/api/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "secret1",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
		assert.Equal(t, http.StatusUnauthorized, noUser.Code)
		assert.Equal(t, wrongPw.Body.String(), noUser.Body.String())
		assert.Contains(t, wrongPw.Body.String(), "Email or Password are incorrect.")
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(t, mux, "/api/auth/login", map[string]string{"email": "alice@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAPILogin_Throttled(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, &captureMailer{}, newFakeThrottle(), testConfig()) // LoginMaxTries = 3
	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)

	w := postJSON(t, mux, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	for i := 0; i < 3; i++ {
		w := postJSON(t, mux, "/api/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w = postJSON(t, mux, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAPILogout(t *testing.T) {
	mux, _ := testAPI(t)

	r := httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "some-token"})
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	var jwtCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == CookieName {
			jwtCookie = c
		}
	}
	require.NotNil(t, jwtCookie)
	assert.Empty(t, jwtCookie.Value)
	assert.Negative(t, jwtCookie.MaxAge)
}

// 编译期断言：内存假实现满足存储接口
var _ UserStore = (*fakeUserStore)(nil)
var _ Throttle = (*fakeThrottle)(nil)
