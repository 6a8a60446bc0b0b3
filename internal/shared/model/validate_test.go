package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateArticle_Boundaries 验证文章内容长度边界
func TestValidateArticle_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		wantErr bool
	}{
		{"valid", "Hello World", "some real content", false},
		{"content exactly 5000", "Title", strings.Repeat("a", 5000), false},
		{"content 5001 too long", "Title", strings.Repeat("a", 5001), true},
		{"content exactly 3", "Title", "abc", false},
		{"content 2 too short", "Title", "ab", true},
		{"empty title", "", "valid content", true},
		{"title exactly 200", strings.Repeat("a", 200), "valid content", false},
		{"title 201 too long", strings.Repeat("a", 201), "valid content", true},
		{"title bad charset", "title <script>", "valid content", true},
		{"title allowed punctuation", `It's "fine", no? Yes - ok!`, "valid content", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs ValidationErrors
			ValidateArticle(&errs, tt.title, tt.content)
			if tt.wantErr {
				assert.False(t, errs.Empty(), "expected validation errors")
			} else {
				assert.True(t, errs.Empty(), "unexpected errors: %v", errs)
			}
		})
	}
}

// TestValidateArticle_Trims 验证内容修剪
func TestValidateArticle_Trims(t *testing.T) {
	var errs ValidationErrors
	title, content := ValidateArticle(&errs, "  Hi there  ", "  body text  ")
	require.True(t, errs.Empty())
	assert.Equal(t, "Hi there", title)
	assert.Equal(t, "body text", content)
}

// TestValidateEmail 验证邮箱校验
func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr string
	}{
		{"valid", "alice@example.com", ""},
		{"blank", "", "Email cannot be blank."},
		{"no at", "aliceexample.com", "Email format is invalid."},
		{"no tld", "alice@example", "Email format is invalid."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs ValidationErrors
			ValidateEmail(&errs, tt.email)
			if tt.wantErr == "" {
				assert.True(t, errs.Empty())
			} else {
				require.Len(t, errs, 1)
				assert.Equal(t, tt.wantErr, errs[0].Message)
				assert.Equal(t, "email", errs[0].Field)
			}
		})
	}
}

// TestValidatePassword 验证密码长度与确认项
func TestValidatePassword(t *testing.T) {
	var errs ValidationErrors
	ValidatePassword(&errs, "short", false, "")
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].Field)

	errs = nil
	ValidatePassword(&errs, "secret1", true, "secret2")
	require.Len(t, errs, 1)
	assert.Equal(t, "passwordConfirmation", errs[0].Field)

	errs = nil
	ValidatePassword(&errs, "secret1", true, "secret1")
	assert.True(t, errs.Empty())
}

// TestNormalizeEmail 验证邮箱归一化
func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

// TestValidationErrors_Collects 验证错误整体收集
func TestValidationErrors_Collects(t *testing.T) {
	var errs ValidationErrors
	ValidateUsername(&errs, " ")
	ValidateEmail(&errs, "bad")
	ValidatePassword(&errs, "x", false, "")

	assert.Len(t, errs, 3)
	assert.Contains(t, errs.Error(), "Username cannot be blank.")
}

// TestMakeSlug 验证标题转 slug
func TestMakeSlug(t *testing.T) {
	assert.Equal(t, "hello-world", MakeSlug("Hello World!"))
}
