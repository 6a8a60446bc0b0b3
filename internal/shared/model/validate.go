package model

import (
	"regexp"
	"strings"
)

// ============================================================================
// 字段校验
// ============================================================================

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors 一次请求收集到的全部字段错误
//
// 校验不在第一个错误处短路，而是整体收集后一次性返回（422）。
type ValidationErrors []FieldError

// Add 追加一条字段错误
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Empty 是否没有任何错误
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// Error 实现 error 接口，拼接所有错误消息
func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	titleRegex = regexp.MustCompile(`^[\w'",.!?\- ]+$`)
)

// 文章字段限制
const (
	TitleMaxLen   = 200
	ContentMinLen = 3
	ContentMaxLen = 5000
)

// 密码最小长度
const PasswordMinLen = 6

// NormalizeEmail 去除首尾空白并转为小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUsername 校验用户名
func ValidateUsername(errs *ValidationErrors, username string) {
	if strings.TrimSpace(username) == "" {
		errs.Add("username", "Username cannot be blank.")
	}
}

// ValidateEmail 校验邮箱格式（邮箱需先经过 NormalizeEmail）
func ValidateEmail(errs *ValidationErrors, email string) {
	if email == "" {
		errs.Add("email", "Email cannot be blank.")
		return
	}
	if !emailRegex.MatchString(email) {
		errs.Add("email", "Email format is invalid.")
	}
}

// ValidatePassword 校验密码长度，confirm 非空时同时校验确认项
func ValidatePassword(errs *ValidationErrors, password string, checkConfirm bool, confirm string) {
	if len(password) < PasswordMinLen {
		errs.Add("password", "Password must be at least 6 characters.")
	}
	if checkConfirm && password != confirm {
		errs.Add("passwordConfirmation", "Password confirmation does not match password.")
	}
}

// ValidateArticle 校验文章字段，返回修剪后的 title/content
//
// title：必填、≤200 字符、受限字符集；content：去首尾空白后 3–5000 字符。
func ValidateArticle(errs *ValidationErrors, title, content string) (string, string) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		errs.Add("title", "Title is required.")
	} else {
		if len(title) > TitleMaxLen {
			errs.Add("title", "Title should not exceed 200 characters.")
		}
		if !titleRegex.MatchString(title) {
			errs.Add("title", `Title should only contain letters, numbers, spaces, and '",.!?- characters.`)
		}
	}

	if len(content) < ContentMinLen {
		errs.Add("content", "Article content must be at least 3 characters.")
	} else if len(content) > ContentMaxLen {
		errs.Add("content", "Article content should not exceed 5000 characters.")
	}

	return title, content
}
