package repository

import (
	"context"
	"zorides_backend/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

func (r *PostRepository) WithTx(tx *gorm.DB) *PostRepository {
	return &PostRepository{DB: tx}
}

func (r *PostRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Preload("Reactions").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Comments.User")
}

// List 按反应数降序、创建时间降序取前 limit 条
func (r *PostRepository) List(ctx context.Context, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.withRelations(ctx).
		Order("(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id) DESC").
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostRepository) ListByUser(ctx context.Context, userID uint) ([]model.Post, error) {
	var posts []model.Post
	err := r.withRelations(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&posts).Error
	return posts, err
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).First(&post, "id = ?", id).Error
	return &post, err
}

func (r *PostRepository) FindDetail(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.withRelations(ctx).First(&post, "id = ?", id).Error
	return &post, err
}

func (r *PostRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteManyCascade 删除帖子及其反应和评论，需在事务内调用
func (r *PostRepository) DeleteManyCascade(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.DB.WithContext(ctx)
	if err := db.Where("post_id IN ?", ids).Delete(&model.Reaction{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id IN ?", ids).Delete(&model.Comment{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&model.Post{}).Error
}

func (r *PostRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.WithTx(tx).DeleteManyCascade(ctx, []string{id})
	})
}

func (r *PostRepository) IDsByUser(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.Post{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

func (r *PostRepository) FindReaction(ctx context.Context, postID string, userID uint) (*model.Reaction, error) {
	var reaction model.Reaction
	err := r.DB.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&reaction).Error
	return &reaction, err
}

func (r *PostRepository) CreateReaction(ctx context.Context, reaction *model.Reaction) error {
	return r.DB.WithContext(ctx).Create(reaction).Error
}

func (r *PostRepository) UpdateReactionType(ctx context.Context, id string, t model.ReactionType) error {
	return r.DB.WithContext(ctx).Model(&model.Reaction{}).Where("id = ?", id).Update("type", t).Error
}

func (r *PostRepository) DeleteReaction(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&model.Reaction{}, "id = ?", id).Error
}

func (r *PostRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.DB.WithContext(ctx).Create(comment).Error
}

func (r *PostRepository) FindComment(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.DB.WithContext(ctx).Preload("User").First(&comment, "id = ?", id).Error
	return &comment, err
}

// DeleteCommentTree 删除评论及其所有回复
func (r *PostRepository) DeleteCommentTree(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []string{id}
		frontier := []string{id}
		for len(frontier) > 0 {
			var children []string
			if err := tx.Model(&model.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}
		return tx.Where("id IN ?", ids).Delete(&model.Comment{}).Error
	})
}

// DeleteUserActivity 清理用户在他人帖子下的反应和评论
func (r *PostRepository) DeleteUserActivity(ctx context.Context, userID uint) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&model.Reaction{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&model.Comment{}).Error
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Post{}).Count(&count).Error
	return count, err
}

// PostWithCounts 管理后台帖子列表
type PostWithCounts struct {
	model.Post
	ReactionCount int `json:"reactionCount"`
	CommentCount  int `json:"commentCount"`
}

func (r *PostRepository) ListWithCounts(ctx context.Context, limit int) ([]PostWithCounts, error) {
	var posts []model.Post
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Preload("Reactions").
		Preload("Comments").
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	result := make([]PostWithCounts, len(posts))
	for i, p := range posts {
		result[i] = PostWithCounts{Post: p, ReactionCount: len(p.Reactions), CommentCount: len(p.Comments)}
	}
	return result, nil
}
