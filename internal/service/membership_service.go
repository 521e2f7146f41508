package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/util"
	"zorides_backend/pkg/logger"
	"zorides_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MembershipAction string

const (
	ActionAccept MembershipAction = "accept"
	ActionReject MembershipAction = "reject"
)

const (
	acceptedNotice = "Great news! Your interest in the group has been accepted. You're in!"
	rejectedNotice = "Your interest in the group was not accepted this time. Keep looking for other groups!"

	// 活动缺失时通知中的占位标题
	fallbackEventTitle = "your event"
)

func interestNotice(userName, eventTitle string) string {
	return fmt.Sprintf("%s is interested in your group \"%s\". Check their profile and accept or message them!", userName, eventTitle)
}

// CapacityReached 创建者占一个名额：active+1 >= maxPeople 时小组已满
func CapacityReached(activeMembers int64, maxPeople int) bool {
	return activeMembers+1 >= int64(maxPeople)
}

// MembershipService 小组成员生命周期：申请加入、创建者审批、退出
type MembershipService struct {
	DB          *gorm.DB
	GroupRepo   *repository.GroupRepository
	MemberRepo  *repository.MemberRepository
	UserRepo    *repository.UserRepository
	EventRepo   *repository.EventRepository
	MessageRepo *repository.MessageRepository
	FeedCache   *repository.FeedCache
}

func NewMembershipService(
	db *gorm.DB,
	groupRepo *repository.GroupRepository,
	memberRepo *repository.MemberRepository,
	userRepo *repository.UserRepository,
	eventRepo *repository.EventRepository,
	messageRepo *repository.MessageRepository,
	feedCache *repository.FeedCache,
) *MembershipService {
	return &MembershipService{
		DB:          db,
		GroupRepo:   groupRepo,
		MemberRepo:  memberRepo,
		UserRepo:    userRepo,
		EventRepo:   eventRepo,
		MessageRepo: messageRepo,
		FeedCache:   feedCache,
	}
}

// RequestToJoin 在同一事务内完成容量检查、写入成员、通知创建者和满员标记
func (s *MembershipService) RequestToJoin(ctx context.Context, groupID string, userID uint) (*model.GroupMember, error) {
	var member *model.GroupMember
	filled := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		groups := s.GroupRepo.WithTx(tx)
		members := s.MemberRepo.WithTx(tx)

		group, err := groups.FindByIDForUpdate(ctx, groupID)
		if err != nil {
			return notFound(err, util.ErrGroupNotFound)
		}
		user, err := s.UserRepo.WithTx(tx).FindByID(ctx, userID)
		if err != nil {
			return notFound(err, util.ErrUserNotFound)
		}

		if group.Status != model.GroupOpen {
			return util.ErrGroupNotOpen
		}

		_, err = members.FindByGroupAndUser(ctx, groupID, userID)
		if err == nil {
			return util.ErrAlreadyMember
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		active, err := members.CountActive(ctx, groupID)
		if err != nil {
			return err
		}
		if CapacityReached(active, group.MaxPeople) {
			return util.ErrGroupFull
		}

		if group.CreatorID == userID {
			return util.ErrOwnGroup
		}

		member = &model.GroupMember{
			GroupID:  groupID,
			UserID:   userID,
			Status:   model.MemberInterested,
			JoinedAt: time.Now(),
		}
		if err := members.Create(ctx, member); err != nil {
			return duplicate(err, util.ErrAlreadyMember)
		}

		eventTitle := fallbackEventTitle
		if event, err := s.EventRepo.WithTx(tx).FindByID(ctx, group.EventID); err == nil {
			if event.Title != "" {
				eventTitle = event.Title
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		creatorID := group.CreatorID
		notice := &model.Message{
			SenderID:        userID,
			RecipientID:     &creatorID,
			Content:         interestNotice(user.Name, eventTitle),
			IsSystemMessage: true,
		}
		if err := s.MessageRepo.WithTx(tx).Create(ctx, notice); err != nil {
			return err
		}

		if CapacityReached(active+1, group.MaxPeople) {
			if err := groups.UpdateStatus(ctx, groupID, model.GroupFilled); err != nil {
				return err
			}
			filled = true
		}

		member.User = *user
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.MembershipTransitions.WithLabelValues("interested").Inc()
	monitoring.MessagesSent.WithLabelValues("system").Inc()
	if filled {
		monitoring.GroupsFilled.Inc()
		logger.Log.Info("Group filled", zap.String("groupId", groupID))
	}
	invalidateFeed(ctx, s.FeedCache)
	return member, nil
}

// DecideMembership 创建者接受或拒绝申请；允许重复处理，状态原地覆盖，FILLED 不回退
func (s *MembershipService) DecideMembership(ctx context.Context, groupID, memberID string, action MembershipAction, actingUserID uint) (*model.GroupMember, error) {
	var status model.MemberStatus
	var notice string
	switch MembershipAction(strings.ToLower(string(action))) {
	case ActionAccept:
		status, notice = model.MemberAccepted, acceptedNotice
	case ActionReject:
		status, notice = model.MemberRejected, rejectedNotice
	default:
		return nil, util.ErrInvalidAction
	}

	group, err := s.GroupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, notFound(err, util.ErrGroupNotFound)
	}
	if group.CreatorID != actingUserID {
		return nil, util.ErrNotGroupCreator
	}

	member, err := s.MemberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, notFound(err, util.ErrMemberNotFound)
	}
	if member.GroupID != groupID {
		return nil, util.ErrMemberNotFound
	}

	now := time.Now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.MemberRepo.WithTx(tx).UpdateStatus(ctx, memberID, status, now); err != nil {
			return err
		}
		recipientID := member.UserID
		return s.MessageRepo.WithTx(tx).Create(ctx, &model.Message{
			SenderID:        actingUserID,
			RecipientID:     &recipientID,
			Content:         notice,
			IsSystemMessage: true,
		})
	})
	if err != nil {
		return nil, err
	}

	member.Status = status
	member.DecidedAt = &now

	monitoring.MembershipTransitions.WithLabelValues(strings.ToLower(string(status))).Inc()
	monitoring.MessagesSent.WithLabelValues("system").Inc()
	invalidateFeed(ctx, s.FeedCache)
	return member, nil
}

func (s *MembershipService) ListMembers(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	if _, err := s.GroupRepo.FindByID(ctx, groupID); err != nil {
		return nil, notFound(err, util.ErrGroupNotFound)
	}
	return s.MemberRepo.ListByGroup(ctx, groupID)
}

// LeaveGroup 成员撤回自己的申请或退出小组，小组状态保持不变；被拒绝的记录保留以阻止再次申请
func (s *MembershipService) LeaveGroup(ctx context.Context, groupID string, userID uint) error {
	if _, err := s.GroupRepo.FindByID(ctx, groupID); err != nil {
		return notFound(err, util.ErrGroupNotFound)
	}
	member, err := s.MemberRepo.FindByGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return notFound(err, util.ErrMemberNotFound)
	}
	if member.Status == model.MemberRejected {
		return util.ErrRejectedWithdraw
	}
	if err := s.MemberRepo.Delete(ctx, member.ID); err != nil {
		return err
	}
	monitoring.MembershipTransitions.WithLabelValues("left").Inc()
	invalidateFeed(ctx, s.FeedCache)
	return nil
}
