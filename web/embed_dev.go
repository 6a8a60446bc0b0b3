//go:build dev
// +build dev

// Package web 提供页面模板与静态资源的嵌入支持（开发模式）
//
// 开发模式下直接从磁盘读取 web/ 目录，改模板无需重新编译。
// 使用方式：go run -tags dev ./cmd/server
package web

import (
	"io/fs"
	"os"
)

// TemplateFS 开发模式下从磁盘读取模板
func TemplateFS() (fs.FS, error) {
	return os.DirFS("web/templates"), nil
}

// StaticFS 开发模式下从磁盘读取静态资源
func StaticFS() (fs.FS, error) {
	return os.DirFS("web/static"), nil
}

// IsEmbedded 返回 false 表示当前为开发模式（资源未嵌入）
func IsEmbedded() bool {
	return false
}
