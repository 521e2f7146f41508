package repository

import (
	"context"
	"time"
	"zorides_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_seen", time.Now()).Error
}

// UserWithCounts 管理后台用户列表
type UserWithCounts struct {
	model.User
	PostCount  int64 `json:"postCount"`
	EventCount int64 `json:"eventCount"`
	GroupCount int64 `json:"groupCount"`
}

func (r *UserRepository) ListWithCounts(ctx context.Context) ([]UserWithCounts, error) {
	var users []UserWithCounts
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Select(`users.*,
			(SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id) AS post_count,
			(SELECT COUNT(*) FROM events WHERE events.creator_id = users.id) AS event_count,
			(SELECT COUNT(*) FROM attendant_groups WHERE attendant_groups.creator_id = users.id) AS group_count`).
		Order("users.created_at DESC").
		Scan(&users).Error
	return users, err
}

// Delete 硬删除用户，关联数据由调用方在同一事务内先行清理
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Unscoped().Delete(&model.User{}, id).Error
}
