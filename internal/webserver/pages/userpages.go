package pages

import (
	"errors"
	"log"
	"net/http"

	"articles-cms/internal/shared/model"
	"articles-cms/internal/shared/storage"
	"articles-cms/internal/webserver/auth"
)

// ============================================================================
// 管理员
// ============================================================================

// UserList 用户列表（仅管理员，以实时记录为准）
func (h *Handler) UserList(w http.ResponseWriter, r *http.Request) {
	authUser := auth.GetAuthUser(r.Context())
	current, err := h.users.GetUserByID(r.Context(), authUser.ID)
	if err != nil {
		log.Printf("[pages.users] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if current == nil || !current.IsAdmin() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Printf("[pages.users] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	h.render(w, r, "users.html", viewData{Title: "Users", Users: out})
}

// UserShow 用户详情；本人可看自己，管理员（以实时记录为准）可看任何人
func (h *Handler) UserShow(w http.ResponseWriter, r *http.Request) {
	authUser := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	if id != authUser.ID {
		current, err := h.users.GetUserByID(r.Context(), authUser.ID)
		if err != nil {
			log.Printf("[pages.user] error: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if current == nil || !current.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	target, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		log.Printf("[pages.user] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if target == nil {
		notFound(w)
		return
	}

	profile := target.Public()
	h.render(w, r, "user.html", viewData{Title: target.Username, Profile: &profile})
}

// ============================================================================
// 本人
// ============================================================================

// UserUpdateForm 本人资料表单，预填当前资料
func (h *Handler) UserUpdateForm(w http.ResponseWriter, r *http.Request) {
	authUser, ok := requireOwnID(w, r)
	if !ok {
		return
	}

	current, err := h.users.GetUserByID(r.Context(), authUser.ID)
	if err != nil {
		log.Printf("[pages.user] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if current == nil {
		notFound(w)
		return
	}

	h.render(w, r, "user-form.html", viewData{
		Title: "Your profile",
		Form: map[string]string{
			"username": current.Username,
			"email":    current.Email,
		},
	})
}

// UserUpdate 处理本人资料更新（username/email，password 选填）
func (h *Handler) UserUpdate(w http.ResponseWriter, r *http.Request) {
	authUser, ok := requireOwnID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	email := model.NormalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	form := map[string]string{"username": username, "email": r.PostFormValue("email")}

	current, err := h.users.GetUserByID(r.Context(), authUser.ID)
	if err != nil {
		log.Printf("[pages.user] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if current == nil {
		notFound(w)
		return
	}

	var errs model.ValidationErrors
	model.ValidateUsername(&errs, username)
	model.ValidateEmail(&errs, email)
	if password != "" {
		model.ValidatePassword(&errs, password, false, "")
	}
	if email != "" && email != current.Email {
		existing, err := h.users.GetUserByEmail(r.Context(), email)
		if err != nil {
			log.Printf("[pages.user] GetUserByEmail error: %v", err)
		} else if existing != nil {
			errs.Add("email", "Email is already in use.")
		}
	}
	if !errs.Empty() {
		h.render(w, r, "user-form.html", viewData{Title: "Your profile", Errors: errs, Form: form})
		return
	}

	if err := h.users.UpdateUserProfile(r.Context(), current.ID, username, email); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			errs.Add("email", "Email is already in use.")
			h.render(w, r, "user-form.html", viewData{Title: "Your profile", Errors: errs, Form: form})
			return
		}
		log.Printf("[pages.user] update error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if password != "" {
		hash, err := auth.HashPassword(password)
		if err == nil {
			err = h.users.UpdateUserPassword(r.Context(), current.ID, hash)
		}
		if err != nil {
			log.Printf("[pages.user] password error: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	setFlash(w, "Profile updated.")
	http.Redirect(w, r, "/users/"+current.ID+"/update", http.StatusSeeOther)
}

// UserDeleteForm 注销确认页
func (h *Handler) UserDeleteForm(w http.ResponseWriter, r *http.Request) {
	authUser, ok := requireOwnID(w, r)
	if !ok {
		return
	}

	current, err := h.users.GetUserByID(r.Context(), authUser.ID)
	if err != nil {
		log.Printf("[pages.user] error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if current == nil {
		notFound(w)
		return
	}

	profile := current.Public()
	h.render(w, r, "user-delete.html", viewData{Title: "Delete account", Profile: &profile})
}

// UserDelete 处理本人注销：删除记录、清除 cookie、回首页
func (h *Handler) UserDelete(w http.ResponseWriter, r *http.Request) {
	authUser, ok := requireOwnID(w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), authUser.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(w)
			return
		}
		log.Printf("[pages.user] delete error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	auth.ClearTokenCookie(w)
	setFlash(w, "Your account has been deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
