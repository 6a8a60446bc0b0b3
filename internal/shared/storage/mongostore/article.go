package mongostore

import (
	"context"
	"time"

	"articles-cms/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ArticleStore
// ============================================================================

func (s *Store) CreateArticle(ctx context.Context, article *model.Article) error {
	return insertOne(ctx, s.col(ColArticles), article)
}

func (s *Store) GetArticleByID(ctx context.Context, id string) (*model.Article, error) {
	return findOne[model.Article](ctx, s.col(ColArticles), bson.D{{Key: "_id", Value: id}})
}

// ListArticles 列出文章，publishedOnly 为 true 时只返回已发布的
func (s *Store) ListArticles(ctx context.Context, publishedOnly bool) ([]*model.Article, error) {
	filter := bson.D{}
	if publishedOnly {
		filter = bson.D{{Key: "published", Value: true}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}}).SetLimit(50)
	return findMany[model.Article](ctx, s.col(ColArticles), filter, opts)
}

// UpdateArticle 更新文章白名单字段（title/slug/content/published）
func (s *Store) UpdateArticle(ctx context.Context, id string, article *model.Article) error {
	return updateFields(ctx, s.col(ColArticles), id, bson.D{
		{Key: "title", Value: article.Title},
		{Key: "slug", Value: article.Slug},
		{Key: "content", Value: article.Content},
		{Key: "published", Value: article.Published},
		{Key: "updated_at", Value: time.Now()},
	})
}

// AddArticleAttachment 追加附件元数据
func (s *Store) AddArticleAttachment(ctx context.Context, id string, att model.Attachment) error {
	return pushField(ctx, s.col(ColArticles), id, "attachments", att)
}

func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColArticles), id)
}
