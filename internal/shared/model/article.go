package model

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Article 文章
//
// 不记录作者关系：任何已认证用户都可以创建/修改/删除文章。
// Slug 由标题派生，仅用于页面 URL 展示，不参与唯一性约束。
type Article struct {
	ID          string       `json:"id" bson:"_id"`
	Slug        string       `json:"slug" bson:"slug"`
	Title       string       `json:"title" bson:"title"`
	Content     string       `json:"content" bson:"content"`
	Published   bool         `json:"published" bson:"published"`
	Attachments []Attachment `json:"attachments,omitempty" bson:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

// Attachment 文章附件元数据，文件本体存放在对象存储中
type Attachment struct {
	Key         string    `json:"key" bson:"key"` // 对象存储中的 key
	Filename    string    `json:"filename" bson:"filename"`
	ContentType string    `json:"content_type" bson:"content_type"`
	Size        int64     `json:"size" bson:"size"`
	UploadedAt  time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// Basename 返回对象 key 去掉文章前缀后的部分，用于下载 URL
func (a Attachment) Basename() string {
	if i := strings.LastIndexByte(a.Key, '/'); i >= 0 {
		return a.Key[i+1:]
	}
	return a.Key
}

// MakeSlug 根据标题生成 URL slug
func MakeSlug(title string) string {
	return slug.Make(title)
}
