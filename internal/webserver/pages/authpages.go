package pages

import (
	"errors"
	"log"
	"net/http"

	"articles-cms/internal/webserver/auth"
)

// ============================================================================
// 注册
// ============================================================================

// SignupForm 注册表单
func (h *Handler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup.html", viewData{Title: "Sign up"})
}

// Signup 处理注册：发送激活邮件后跳转登录页
//
// 校验失败时重新渲染表单，保留除密码外的输入。
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")

	_, errs, err := h.svc.SignupPendingActivation(r.Context(), username, email,
		r.PostFormValue("password"), r.PostFormValue("passwordConfirmation"))
	if err != nil {
		log.Printf("[pages.signup] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !errs.Empty() {
		h.render(w, r, "signup.html", viewData{
			Title:  "Sign up",
			Errors: errs,
			Form:   map[string]string{"username": username, "email": email},
		})
		return
	}

	setFlash(w, "Almost done! Check your email for an activation link.")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// Activate 邮件激活链接入口，失败时静默跳转登录页
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	user, token, err := h.svc.Activate(r.Context(), r.URL.Query().Get("email"), r.URL.Query().Get("token"))
	if err != nil {
		if !errors.Is(err, auth.ErrActivationFailed) {
			log.Printf("[pages.activate] error: %v", err)
		}
		setFlash(w, "Could not activate the account. The link may have been used already.")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	auth.SetTokenCookie(w, h.svc.Config(), token)
	setFlash(w, "Welcome, "+user.Username+"! Your account is now active.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ============================================================================
// 登录/登出
// ============================================================================

// LoginForm 登录表单
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", viewData{Title: "Log in"})
}

// Login 处理登录：页面端要求账号已激活
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")

	fail := func(message string) {
		data := viewData{
			Title: "Log in",
			Form:  map[string]string{"email": email},
		}
		data.Errors.Add("login", message)
		h.render(w, r, "login.html", data)
	}

	_, token, err := h.svc.Login(r.Context(), email, r.PostFormValue("password"), true)
	switch {
	case err == nil:
		auth.SetTokenCookie(w, h.svc.Config(), token)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, auth.ErrInvalidCredentials):
		fail("Email or Password are incorrect.")
	case errors.Is(err, auth.ErrNotActivated):
		fail("Please activate your account first. Check your email for the activation link.")
	case errors.Is(err, auth.ErrThrottled):
		fail("Too many login attempts. Try again later.")
	default:
		log.Printf("[pages.login] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Logout 清除登录 cookie 并回首页
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ============================================================================
// 密码重置
// ============================================================================

// ForgotPasswordForm 找回密码表单
func (h *Handler) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "forgot-password.html", viewData{Title: "Forgot password"})
}

// ForgotPassword 发送重置邮件
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")

	errs, err := h.svc.StartPasswordReset(r.Context(), email)
	if err != nil {
		log.Printf("[pages.forgot] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !errs.Empty() {
		h.render(w, r, "forgot-password.html", viewData{
			Title:  "Forgot password",
			Errors: errs,
			Form:   map[string]string{"email": email},
		})
		return
	}

	setFlash(w, "A password reset link is on its way to your inbox.")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// ResetPasswordForm 重置密码表单，email/token 来自邮件链接
func (h *Handler) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "reset-password.html", viewData{
		Title: "Reset password",
		Form: map[string]string{
			"email": r.URL.Query().Get("email"),
			"token": r.URL.Query().Get("token"),
		},
	})
}

// ResetPassword 处理重置：成功后直接登录
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	resetToken := r.PostFormValue("token")

	user, token, errs, err := h.svc.ResetPassword(r.Context(), email, resetToken,
		r.PostFormValue("password"), r.PostFormValue("passwordConfirmation"))
	if err != nil {
		log.Printf("[pages.reset] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !errs.Empty() {
		h.render(w, r, "reset-password.html", viewData{
			Title:  "Reset password",
			Errors: errs,
			Form:   map[string]string{"email": email, "token": resetToken},
		})
		return
	}

	auth.SetTokenCookie(w, h.svc.Config(), token)
	setFlash(w, "Welcome back, "+user.Username+"! Your password has been updated.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
