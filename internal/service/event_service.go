package service

import (
	"context"
	"strings"
	"time"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/util"
)

type EventService struct {
	EventRepo *repository.EventRepository
	FeedCache *repository.FeedCache
}

func NewEventService(eventRepo *repository.EventRepository, feedCache *repository.FeedCache) *EventService {
	return &EventService{
		EventRepo: eventRepo,
		FeedCache: feedCache,
	}
}

type EventInput struct {
	Title       string
	Description string
	State       string
	District    string
	Locality    string
	Venue       string
	Date        time.Time
	MediaURLs   []string
}

func (in *EventInput) validate() error {
	if strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.State) == "" ||
		strings.TrimSpace(in.District) == "" ||
		strings.TrimSpace(in.Locality) == "" ||
		in.Date.IsZero() {
		return util.InvalidArgumentError("Missing required fields")
	}
	return nil
}

// EventUpdate 部分更新，nil 字段保持不变
type EventUpdate struct {
	Title       *string
	Description *string
	State       *string
	District    *string
	Locality    *string
	Venue       *string
	Date        *time.Time
	MediaURLs   []string
}

func (s *EventService) List(ctx context.Context, filter repository.EventFilter) ([]model.Event, error) {
	return s.EventRepo.List(ctx, filter)
}

func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.EventRepo.FindDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrEventNotFound)
	}
	return event, nil
}

func (s *EventService) Create(ctx context.Context, actor Actor, in EventInput) (*model.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	event := &model.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		State:       in.State,
		District:    in.District,
		Locality:    in.Locality,
		Venue:       in.Venue,
		Date:        in.Date,
		CreatorID:   actor.UserID,
		Status:      model.EventOpen,
		MediaURLs:   model.NewStringList(in.MediaURLs),
	}
	if err := s.EventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	invalidateFeed(ctx, s.FeedCache)
	return s.Get(ctx, event.ID)
}

// loadOwned 读取活动并校验修改权限
func (s *EventService) loadOwned(ctx context.Context, actor Actor, id string) (*model.Event, error) {
	event, err := s.EventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrEventNotFound)
	}
	if !actor.CanModify(event.CreatorID) {
		return nil, util.ErrNotOwner
	}
	return event, nil
}

func (s *EventService) Update(ctx context.Context, actor Actor, id string, in EventUpdate) (*model.Event, error) {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	setText := func(column string, v *string, required bool) error {
		if v == nil {
			return nil
		}
		if required && strings.TrimSpace(*v) == "" {
			return util.InvalidArgumentError(column + " cannot be empty")
		}
		fields[column] = *v
		return nil
	}
	for _, f := range []struct {
		column   string
		value    *string
		required bool
	}{
		{"title", in.Title, true},
		{"description", in.Description, true},
		{"state", in.State, true},
		{"district", in.District, true},
		{"locality", in.Locality, true},
		{"venue", in.Venue, false},
	} {
		if err := setText(f.column, f.value, f.required); err != nil {
			return nil, err
		}
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return nil, util.InvalidArgumentError("date cannot be empty")
		}
		fields["date"] = *in.Date
	}
	if in.MediaURLs != nil {
		fields["media_urls"] = model.NewStringList(in.MediaURLs)
	}

	if len(fields) > 0 {
		if err := s.EventRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
		invalidateFeed(ctx, s.FeedCache)
	}
	return s.Get(ctx, id)
}

func (s *EventService) UpdateStatus(ctx context.Context, actor Actor, id string, status model.EventStatus) (*model.Event, error) {
	if !status.Valid() {
		return nil, util.InvalidArgumentError("Invalid status")
	}
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.EventRepo.UpdateFields(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}
	invalidateFeed(ctx, s.FeedCache)
	return s.Get(ctx, id)
}

func (s *EventService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.EventRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	invalidateFeed(ctx, s.FeedCache)
	return nil
}
