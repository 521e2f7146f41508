package service

import (
	"context"
	"strings"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/util"
)

// UserService 处理用户资料相关的业务逻辑
type UserService struct {
	UserRepo  *repository.UserRepository
	EventRepo *repository.EventRepository
	GroupRepo *repository.GroupRepository
}

func NewUserService(userRepo *repository.UserRepository, eventRepo *repository.EventRepository, groupRepo *repository.GroupRepository) *UserService {
	return &UserService{
		UserRepo:  userRepo,
		EventRepo: eventRepo,
		GroupRepo: groupRepo,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfileInput 仅更新非空字段
type UpdateProfileInput struct {
	Name     *string
	Avatar   *string
	Bio      *string
	Age      *int
	Gender   *string
	State    *string
	District *string
	Locality *string
	HasRide  *bool
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in UpdateProfileInput) (*model.User, error) {
	if _, err := s.GetUserByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, util.InvalidArgumentError("Name cannot be empty")
		}
		fields["name"] = name
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Age != nil {
		if *in.Age < 0 || *in.Age > 150 {
			return nil, util.InvalidArgumentError("Invalid age")
		}
		fields["age"] = *in.Age
	}
	if in.Gender != nil {
		fields["gender"] = *in.Gender
	}
	if in.State != nil {
		fields["state"] = *in.State
	}
	if in.District != nil {
		fields["district"] = *in.District
	}
	if in.Locality != nil {
		fields["locality"] = *in.Locality
	}
	if in.HasRide != nil {
		fields["has_ride"] = *in.HasRide
	}

	if len(fields) > 0 {
		if err := s.UserRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(ctx, id)
}

// UserProfile 公开主页：用户信息及其创建的活动和小组
type UserProfile struct {
	User   *model.User            `json:"user"`
	Events []model.Event          `json:"events"`
	Groups []model.AttendantGroup `json:"groups"`
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*UserProfile, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := s.EventRepo.ListByCreator(ctx, id)
	if err != nil {
		return nil, err
	}
	groups, err := s.GroupRepo.ListByCreator(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserProfile{User: user, Events: events, Groups: groups}, nil
}
