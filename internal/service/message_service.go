package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/util"
	"zorides_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// conversationScanLimit 构建会话列表时最多扫描的私信条数
const conversationScanLimit = 2000

type MessageService struct {
	MessageRepo *repository.MessageRepository
	UserRepo    *repository.UserRepository
	GroupRepo   *repository.GroupRepository
	MemberRepo  *repository.MemberRepository
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	groupRepo *repository.GroupRepository,
	memberRepo *repository.MemberRepository,
) *MessageService {
	return &MessageService{
		MessageRepo: messageRepo,
		UserRepo:    userRepo,
		GroupRepo:   groupRepo,
		MemberRepo:  memberRepo,
	}
}

type SendMessageInput struct {
	RecipientID *uint
	GroupID     *string
	Content     string
}

// ensureGroupParticipant 小组创建者或未被拒绝的成员才能读写小组消息
func (s *MessageService) ensureGroupParticipant(ctx context.Context, groupID string, actor Actor) error {
	group, err := s.GroupRepo.FindByID(ctx, groupID)
	if err != nil {
		return notFound(err, util.ErrGroupNotFound)
	}
	if actor.Admin || group.CreatorID == actor.UserID {
		return nil
	}
	member, err := s.MemberRepo.FindByGroupAndUser(ctx, groupID, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ForbiddenError("Only group participants can access group messages")
		}
		return err
	}
	if member.Status == model.MemberRejected {
		return util.ForbiddenError("Only group participants can access group messages")
	}
	return nil
}

// Send 用户发送私信或小组消息，系统通知只由成员流程生成
func (s *MessageService) Send(ctx context.Context, actor Actor, in SendMessageInput) (*model.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, util.InvalidArgumentError("Content is required")
	}
	if in.RecipientID == nil && (in.GroupID == nil || *in.GroupID == "") {
		return nil, util.InvalidArgumentError("Either recipientId or groupId is required")
	}

	msg := &model.Message{
		SenderID: actor.UserID,
		Content:  content,
	}
	kind := "direct"
	if in.GroupID != nil && *in.GroupID != "" {
		if err := s.ensureGroupParticipant(ctx, *in.GroupID, actor); err != nil {
			return nil, err
		}
		groupID := *in.GroupID
		msg.GroupID = &groupID
		kind = "group"
	} else {
		if *in.RecipientID == actor.UserID {
			return nil, util.InvalidArgumentError("Cannot send a message to yourself")
		}
		exists, err := s.UserRepo.Exists(ctx, *in.RecipientID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, util.ErrUserNotFound
		}
		recipientID := *in.RecipientID
		msg.RecipientID = &recipientID
	}

	if err := s.MessageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	monitoring.MessagesSent.WithLabelValues(kind).Inc()
	return s.MessageRepo.FindByID(ctx, msg.ID)
}

type MessageQuery struct {
	OtherUserID uint
	GroupID     string
}

// List 会话视图，按时间升序：小组 > 指定对象 > 全部
func (s *MessageService) List(ctx context.Context, actor Actor, q MessageQuery) ([]model.Message, error) {
	switch {
	case q.GroupID != "":
		if err := s.ensureGroupParticipant(ctx, q.GroupID, actor); err != nil {
			return nil, err
		}
		return s.MessageRepo.ByGroup(ctx, q.GroupID, util.MaxMessagesPerReq)
	case q.OtherUserID != 0:
		return s.MessageRepo.Between(ctx, actor.UserID, q.OtherUserID, util.MaxMessagesPerReq)
	default:
		return s.MessageRepo.ForUser(ctx, actor.UserID, util.MaxMessagesPerReq)
	}
}

// Conversation 会话列表项
type Conversation struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Avatar          string    `json:"avatar"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int64     `json:"unreadCount"`
}

// Conversations 按对方分组的私信会话，最近的在前
func (s *MessageService) Conversations(ctx context.Context, actor Actor) ([]Conversation, error) {
	msgs, err := s.MessageRepo.DirectForUserDesc(ctx, actor.UserID, conversationScanLimit)
	if err != nil {
		return nil, err
	}
	unread, err := s.MessageRepo.UnreadCounts(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	conversations := make([]Conversation, 0)
	for _, m := range msgs {
		partnerID := m.SenderID
		partner := &m.Sender
		if m.SenderID == actor.UserID {
			if m.RecipientID == nil {
				continue
			}
			partnerID = *m.RecipientID
			partner = m.Recipient
		}
		if partnerID == 0 || seen[partnerID] {
			continue
		}
		seen[partnerID] = true

		conv := Conversation{
			ID:              partnerID,
			Name:            "Unknown",
			LastMessage:     m.Content,
			LastMessageTime: m.CreatedAt,
			UnreadCount:     unread[partnerID],
		}
		if partner != nil && partner.ID != 0 {
			conv.Name = partner.Name
			conv.Avatar = partner.Avatar
		}
		conversations = append(conversations, conv)
	}
	return conversations, nil
}

func (s *MessageService) MarkConversationRead(ctx context.Context, actor Actor, otherUserID uint) (int64, error) {
	if otherUserID == 0 {
		return 0, util.InvalidArgumentError("otherUserId is required")
	}
	return s.MessageRepo.MarkRead(ctx, actor.UserID, otherUserID)
}
