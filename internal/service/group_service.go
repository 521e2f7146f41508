package service

import (
	"context"
	"strings"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/util"
)

type GroupService struct {
	GroupRepo *repository.GroupRepository
	EventRepo *repository.EventRepository
	FeedCache *repository.FeedCache
}

func NewGroupService(groupRepo *repository.GroupRepository, eventRepo *repository.EventRepository, feedCache *repository.FeedCache) *GroupService {
	return &GroupService{
		GroupRepo: groupRepo,
		EventRepo: eventRepo,
		FeedCache: feedCache,
	}
}

// GroupInput 创建小组；偏好字段仅作展示，不参与加入校验
type GroupInput struct {
	EventID           string
	PlanDescription   string
	AgeMin            *int
	AgeMax            *int
	GenderPreference  string
	RideMode          string
	RideOwnership     string
	GroupImage        string
	MaxPeople         int
	CustomPreferences string
}

type GroupUpdate struct {
	PlanDescription   *string
	AgeMin            *int
	AgeMax            *int
	GenderPreference  *string
	RideMode          *string
	RideOwnership     *string
	GroupImage        *string
	MaxPeople         *int
	CustomPreferences *string
}

func validateAgeRange(lo, hi *int) error {
	if lo != nil && *lo < 0 || hi != nil && *hi < 0 {
		return util.InvalidArgumentError("Invalid age range")
	}
	if lo != nil && hi != nil && *lo > *hi {
		return util.InvalidArgumentError("Invalid age range")
	}
	return nil
}

func (s *GroupService) Create(ctx context.Context, actor Actor, in GroupInput) (*model.AttendantGroup, error) {
	if in.EventID == "" || strings.TrimSpace(in.PlanDescription) == "" {
		return nil, util.InvalidArgumentError("Missing required fields")
	}
	if in.MaxPeople < 2 {
		return nil, util.InvalidArgumentError("maxPeople must be at least 2")
	}
	if err := validateAgeRange(in.AgeMin, in.AgeMax); err != nil {
		return nil, err
	}

	event, err := s.EventRepo.FindByID(ctx, in.EventID)
	if err != nil {
		return nil, notFound(err, util.ErrEventNotFound)
	}
	if event.Status == model.EventCancelled {
		return nil, util.ConflictError("Event has been cancelled")
	}

	group := &model.AttendantGroup{
		EventID:           in.EventID,
		CreatorID:         actor.UserID,
		PlanDescription:   in.PlanDescription,
		AgeMin:            in.AgeMin,
		AgeMax:            in.AgeMax,
		GenderPreference:  in.GenderPreference,
		RideMode:          in.RideMode,
		RideOwnership:     in.RideOwnership,
		GroupImage:        in.GroupImage,
		MaxPeople:         in.MaxPeople,
		CustomPreferences: in.CustomPreferences,
		Status:            model.GroupOpen,
	}
	if err := s.GroupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	invalidateFeed(ctx, s.FeedCache)
	return s.Get(ctx, group.ID)
}

func (s *GroupService) Get(ctx context.Context, id string) (*model.AttendantGroup, error) {
	group, err := s.GroupRepo.FindDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrGroupNotFound)
	}
	return group, nil
}

func (s *GroupService) ListByEvent(ctx context.Context, eventID string) ([]model.AttendantGroup, error) {
	if _, err := s.EventRepo.FindByID(ctx, eventID); err != nil {
		return nil, notFound(err, util.ErrEventNotFound)
	}
	return s.GroupRepo.ListByEvent(ctx, eventID)
}

func (s *GroupService) loadOwned(ctx context.Context, actor Actor, id string) (*model.AttendantGroup, error) {
	group, err := s.GroupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrGroupNotFound)
	}
	if !actor.CanModify(group.CreatorID) {
		return nil, util.ErrNotOwner
	}
	return group, nil
}

// Update 修改小组信息；调整 maxPeople 不会自动改变 FILLED 状态
func (s *GroupService) Update(ctx context.Context, actor Actor, id string, in GroupUpdate) (*model.AttendantGroup, error) {
	group, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.PlanDescription != nil {
		if strings.TrimSpace(*in.PlanDescription) == "" {
			return nil, util.InvalidArgumentError("planDescription cannot be empty")
		}
		fields["plan_description"] = *in.PlanDescription
	}
	if in.MaxPeople != nil {
		if *in.MaxPeople < 2 {
			return nil, util.InvalidArgumentError("maxPeople must be at least 2")
		}
		fields["max_people"] = *in.MaxPeople
	}
	ageMin, ageMax := group.AgeMin, group.AgeMax
	if in.AgeMin != nil {
		ageMin = in.AgeMin
		fields["age_min"] = *in.AgeMin
	}
	if in.AgeMax != nil {
		ageMax = in.AgeMax
		fields["age_max"] = *in.AgeMax
	}
	if err := validateAgeRange(ageMin, ageMax); err != nil {
		return nil, err
	}
	if in.GenderPreference != nil {
		fields["gender_preference"] = *in.GenderPreference
	}
	if in.RideMode != nil {
		fields["ride_mode"] = *in.RideMode
	}
	if in.RideOwnership != nil {
		fields["ride_ownership"] = *in.RideOwnership
	}
	if in.GroupImage != nil {
		fields["group_image"] = *in.GroupImage
	}
	if in.CustomPreferences != nil {
		fields["custom_preferences"] = *in.CustomPreferences
	}

	if len(fields) > 0 {
		if err := s.GroupRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
		invalidateFeed(ctx, s.FeedCache)
	}
	return s.Get(ctx, id)
}

func (s *GroupService) UpdateStatus(ctx context.Context, actor Actor, id string, status model.GroupStatus) (*model.AttendantGroup, error) {
	if !status.Valid() {
		return nil, util.InvalidArgumentError("Invalid status")
	}
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.GroupRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	invalidateFeed(ctx, s.FeedCache)
	return s.Get(ctx, id)
}

func (s *GroupService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.GroupRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	invalidateFeed(ctx, s.FeedCache)
	return nil
}
