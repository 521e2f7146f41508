package service

import (
	"context"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/util"
	"zorides_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminService 后台管理，调用方已通过角色中间件校验
type AdminService struct {
	DB          *gorm.DB
	UserRepo    *repository.UserRepository
	EventRepo   *repository.EventRepository
	GroupRepo   *repository.GroupRepository
	MemberRepo  *repository.MemberRepository
	MessageRepo *repository.MessageRepository
	PostRepo    *repository.PostRepository
	FeedCache   *repository.FeedCache
}

func NewAdminService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	eventRepo *repository.EventRepository,
	groupRepo *repository.GroupRepository,
	memberRepo *repository.MemberRepository,
	messageRepo *repository.MessageRepository,
	postRepo *repository.PostRepository,
	feedCache *repository.FeedCache,
) *AdminService {
	return &AdminService{
		DB:          db,
		UserRepo:    userRepo,
		EventRepo:   eventRepo,
		GroupRepo:   groupRepo,
		MemberRepo:  memberRepo,
		MessageRepo: messageRepo,
		PostRepo:    postRepo,
		FeedCache:   feedCache,
	}
}

var adminActor = Actor{Admin: true}

func (s *AdminService) ListUsers(ctx context.Context) ([]repository.UserWithCounts, error) {
	return s.UserRepo.ListWithCounts(ctx)
}

func (s *AdminService) ListEvents(ctx context.Context) ([]repository.EventWithCounts, error) {
	return s.EventRepo.ListWithCounts(ctx)
}

func (s *AdminService) ListGroups(ctx context.Context) ([]repository.GroupWithCount, error) {
	return s.GroupRepo.ListWithCounts(ctx)
}

func (s *AdminService) ListPosts(ctx context.Context) ([]repository.PostWithCounts, error) {
	return s.PostRepo.ListWithCounts(ctx, util.AdminPostLimit)
}

// DeleteUser 删除用户及其创建的全部内容；管理员账号不可删除
func (s *AdminService) DeleteUser(ctx context.Context, userID uint) error {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, util.ErrUserNotFound)
	}
	if user.IsAdmin() {
		return util.InvalidArgumentError("Cannot delete admin user")
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.EventRepo.WithTx(tx)
		groups := s.GroupRepo.WithTx(tx)
		posts := s.PostRepo.WithTx(tx)

		eventIDs, err := events.IDsByCreator(ctx, userID)
		if err != nil {
			return err
		}
		if err := events.DeleteManyCascade(ctx, eventIDs); err != nil {
			return err
		}

		groupIDs, err := groups.IDsByCreator(ctx, userID)
		if err != nil {
			return err
		}
		if err := groups.DeleteManyCascade(ctx, groupIDs); err != nil {
			return err
		}

		postIDs, err := posts.IDsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := posts.DeleteManyCascade(ctx, postIDs); err != nil {
			return err
		}
		if err := posts.DeleteUserActivity(ctx, userID); err != nil {
			return err
		}

		if err := s.MemberRepo.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.MessageRepo.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return s.UserRepo.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("User deleted by admin", zap.Uint("userId", userID), zap.String("email", user.Email))
	invalidateFeed(ctx, s.FeedCache)
	return nil
}

func (s *AdminService) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := s.EventRepo.FindByID(ctx, eventID); err != nil {
		return notFound(err, util.ErrEventNotFound)
	}
	if err := s.EventRepo.DeleteCascade(ctx, eventID); err != nil {
		return err
	}
	invalidateFeed(ctx, s.FeedCache)
	return nil
}

func (s *AdminService) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := s.GroupRepo.FindByID(ctx, groupID); err != nil {
		return notFound(err, util.ErrGroupNotFound)
	}
	if err := s.GroupRepo.DeleteCascade(ctx, groupID); err != nil {
		return err
	}
	invalidateFeed(ctx, s.FeedCache)
	return nil
}

func (s *AdminService) DeletePost(ctx context.Context, postID string) error {
	if _, err := s.PostRepo.FindByID(ctx, postID); err != nil {
		return notFound(err, util.ErrPostNotFound)
	}
	return s.PostRepo.DeleteCascade(ctx, postID)
}

func (s *AdminService) UpdateEventStatus(ctx context.Context, eventID string, status model.EventStatus) (*model.Event, error) {
	return NewEventService(s.EventRepo, s.FeedCache).UpdateStatus(ctx, adminActor, eventID, status)
}
