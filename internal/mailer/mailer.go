// Package mailer 邮件发送
//
// 账号激活和密码重置邮件由本包渲染并投递。投递方式有两种实现：
//   - LogMailer：把邮件内容打到日志（开发/测试环境，不真正发送）
//   - SMTPMailer：通过 SMTP 真正发送（配置了 smtp.host 时启用）
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"net/url"

	"articles-cms/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Message 一封待发送的邮件
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer 邮件投递接口
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ============================================================================
// 邮件渲染
// ============================================================================

// ActivationEmail 渲染账号激活邮件
func ActivationEmail(baseURL, username, email, token string) (Message, error) {
	link := fmt.Sprintf("%s/auth/activate-account?email=%s&token=%s",
		baseURL, url.QueryEscape(email), url.QueryEscape(token))

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "activate-account.html", map[string]string{
		"Username": username,
		"Link":     link,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render activation email: %w", err)
	}
	return Message{To: email, Subject: "Account activation", HTML: buf.String()}, nil
}

// ResetPasswordEmail 渲染密码重置邮件
func ResetPasswordEmail(baseURL, email, token string) (Message, error) {
	link := fmt.Sprintf("%s/auth/reset-password?email=%s&token=%s",
		baseURL, url.QueryEscape(email), url.QueryEscape(token))

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "reset-password.html", map[string]string{
		"Link": link,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render reset email: %w", err)
	}
	return Message{To: email, Subject: "Reset Password", HTML: buf.String()}, nil
}

// ============================================================================
// 投递实现
// ============================================================================

// LogMailer 把邮件打到日志，不真正发送
type LogMailer struct {
	From string
}

// Send 记录邮件内容
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("[mailer] To: %s From: %s Subject: %s\n%s", msg.To, m.From, msg.Subject, msg.HTML)
	return nil
}

// SMTPMailer 通过 SMTP 发送邮件
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer 创建 SMTP 投递实例
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send 发送邮件
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.cfg.From, msg.To, msg.Subject, msg.HTML)

	if err := smtp.SendMail(addr, nil, m.cfg.From, []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// New 根据配置选择投递实现
func New(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return &LogMailer{From: cfg.From}
	}
	return NewSMTPMailer(cfg)
}
