package service

import (
	"context"
	"errors"
	"zorides_backend/internal/repository"
	"zorides_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor 发起请求的用户，由 JWT 解析得到
type Actor struct {
	UserID uint
	Admin  bool
}

// CanModify 资源创建者或管理员
func (a Actor) CanModify(ownerID uint) bool {
	return a.Admin || (a.UserID != 0 && a.UserID == ownerID)
}

// notFound 将 gorm 的记录不存在转换为业务错误
func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// duplicate 唯一索引冲突转换为业务错误，需要以 TranslateError 打开 gorm
func duplicate(err error, target error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return target
	}
	return err
}

func invalidateFeed(ctx context.Context, cache *repository.FeedCache) {
	if err := cache.Invalidate(ctx); err != nil {
		logger.Log.Warn("Failed to invalidate feed cache", zap.Error(err))
	}
}
