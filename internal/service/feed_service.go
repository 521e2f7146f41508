package service

import (
	"context"
	"sort"
	"time"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/util"
	"zorides_backend/pkg/logger"
	"zorides_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const (
	FeedTypeEvent = "event"
	FeedTypeGroup = "group"
)

// FeedItem 信息流统一展示结构，活动与小组共用
type FeedItem struct {
	ID                   string              `json:"id"`
	Type                 string              `json:"type"`
	UserID               uint                `json:"userId"`
	UserName             string              `json:"userName"`
	UserAvatar           string              `json:"userAvatar"`
	Image                *string             `json:"image"`
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	Location             string              `json:"location"`
	Date                 *time.Time          `json:"date"`
	Status               string              `json:"status"`
	CreatedAt            time.Time           `json:"createdAt"`
	EventID              string              `json:"eventId,omitempty"`
	RideOwnership        string              `json:"rideOwnership,omitempty"`
	MaxPeople            int                 `json:"maxPeople,omitempty"`
	MemberCount          int64               `json:"memberCount,omitempty"`
	UserMembershipStatus *model.MemberStatus `json:"userMembershipStatus,omitempty"`
	IsCreator            bool                `json:"isCreator,omitempty"`
}

type FeedService struct {
	EventRepo  *repository.EventRepository
	GroupRepo  *repository.GroupRepository
	MemberRepo *repository.MemberRepository
	Cache      *repository.FeedCache
	Limit      int
}

func NewFeedService(
	eventRepo *repository.EventRepository,
	groupRepo *repository.GroupRepository,
	memberRepo *repository.MemberRepository,
	cache *repository.FeedCache,
	limit int,
) *FeedService {
	if limit <= 0 {
		limit = util.DefaultFeedLimit
	}
	return &FeedService{
		EventRepo:  eventRepo,
		GroupRepo:  groupRepo,
		MemberRepo: memberRepo,
		Cache:      cache,
		Limit:      limit,
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func eventItem(e *model.Event) FeedItem {
	date := e.Date
	return FeedItem{
		ID:          e.ID,
		Type:        FeedTypeEvent,
		UserID:      e.Creator.ID,
		UserName:    e.Creator.Name,
		UserAvatar:  e.Creator.Avatar,
		Image:       optionalString(e.MediaURLs.First()),
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location(),
		Date:        &date,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
	}
}

func groupItem(g *model.AttendantGroup, memberCount int64) FeedItem {
	item := FeedItem{
		ID:            g.ID,
		Type:          FeedTypeGroup,
		UserID:        g.Creator.ID,
		UserName:      g.Creator.Name,
		UserAvatar:    g.Creator.Avatar,
		Image:         optionalString(g.GroupImage),
		Title:         "Looking for companions - Event",
		Description:   g.PlanDescription,
		Location:      "Location not specified",
		Status:        string(g.Status),
		CreatedAt:     g.CreatedAt,
		EventID:       g.EventID,
		RideOwnership: g.RideOwnership,
		MaxPeople:     g.MaxPeople,
		MemberCount:   memberCount,
	}
	if g.Event != nil && g.Event.ID != "" {
		date := g.Event.Date
		item.Title = "Looking for companions - " + g.Event.Title
		item.Location = g.Event.Location()
		item.Date = &date
	}
	return item
}

// base 与用户无关的信息流，优先读缓存
func (s *FeedService) base(ctx context.Context) ([]FeedItem, error) {
	var items []FeedItem
	hit, err := s.Cache.Get(ctx, &items)
	if err != nil {
		logger.Log.Warn("Feed cache read failed", zap.Error(err))
	}
	if hit {
		monitoring.FeedCache.WithLabelValues("hit").Inc()
		return items, nil
	}
	monitoring.FeedCache.WithLabelValues("miss").Inc()

	events, err := s.EventRepo.Recent(ctx, s.Limit)
	if err != nil {
		return nil, err
	}
	groups, err := s.GroupRepo.Recent(ctx, []model.GroupStatus{model.GroupOpen, model.GroupFilled}, s.Limit)
	if err != nil {
		return nil, err
	}
	groupIDs := make([]string, len(groups))
	for i := range groups {
		groupIDs[i] = groups[i].ID
	}
	counts, err := s.GroupRepo.MemberCounts(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	items = make([]FeedItem, 0, len(events)+len(groups))
	for i := range events {
		items = append(items, eventItem(&events[i]))
	}
	for i := range groups {
		items = append(items, groupItem(&groups[i], counts[groups[i].ID]))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if err := s.Cache.Set(ctx, items); err != nil {
		logger.Log.Warn("Feed cache write failed", zap.Error(err))
	}
	return items, nil
}

// Get 返回信息流；userID 非 0 时附加该用户在各小组中的成员状态
func (s *FeedService) Get(ctx context.Context, userID uint) ([]FeedItem, error) {
	items, err := s.base(ctx)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return items, nil
	}

	groupIDs := make([]string, 0)
	for _, it := range items {
		if it.Type == FeedTypeGroup {
			groupIDs = append(groupIDs, it.ID)
		}
	}
	statuses, err := s.MemberRepo.StatusesForUser(ctx, userID, groupIDs)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Type != FeedTypeGroup {
			continue
		}
		items[i].IsCreator = items[i].UserID == userID
		if st, ok := statuses[items[i].ID]; ok {
			status := st
			items[i].UserMembershipStatus = &status
		}
	}
	return items, nil
}
