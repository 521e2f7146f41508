package repository

import (
	"context"
	"time"
	"zorides_backend/internal/model"

	"gorm.io/gorm"
)

type MemberRepository struct {
	DB *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{DB: db}
}

func (r *MemberRepository) WithTx(tx *gorm.DB) *MemberRepository {
	return &MemberRepository{DB: tx}
}

func (r *MemberRepository) Create(ctx context.Context, member *model.GroupMember) error {
	return r.DB.WithContext(ctx).Create(member).Error
}

func (r *MemberRepository) FindByID(ctx context.Context, id string) (*model.GroupMember, error) {
	var member model.GroupMember
	err := r.DB.WithContext(ctx).Preload("User").First(&member, "id = ?", id).Error
	return &member, err
}

func (r *MemberRepository) FindByGroupAndUser(ctx context.Context, groupID string, userID uint) (*model.GroupMember, error) {
	var member model.GroupMember
	err := r.DB.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	return &member, err
}

// CountActive 占用名额的成员数（INTERESTED + ACCEPTED），不含创建者
func (r *MemberRepository) CountActive(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND status IN ?", groupID, model.ActiveMemberStatuses).
		Count(&count).Error
	return count, err
}

func (r *MemberRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

func (r *MemberRepository) ListByGroup(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.DB.WithContext(ctx).Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

// UpdateStatus 原地修改成员状态并记录处理时间
func (r *MemberRepository) UpdateStatus(ctx context.Context, id string, status model.MemberStatus, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.GroupMember{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "decided_at": at}).Error
}

func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&model.GroupMember{}, "id = ?", id).Error
}

func (r *MemberRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.GroupMember{}).Error
}

// StatusesForUser 用户在给定小组中的成员状态，无记录的小组不出现在结果中
func (r *MemberRepository) StatusesForUser(ctx context.Context, userID uint, groupIDs []string) (map[string]model.MemberStatus, error) {
	result := make(map[string]model.MemberStatus)
	if userID == 0 || len(groupIDs) == 0 {
		return result, nil
	}
	var members []model.GroupMember
	err := r.DB.WithContext(ctx).
		Select("group_id", "status").
		Where("user_id = ? AND group_id IN ?", userID, groupIDs).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		result[m.GroupID] = m.Status
	}
	return result, nil
}

func (r *MemberRepository) ListByUser(ctx context.Context, userID uint) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("joined_at DESC").Find(&members).Error
	return members, err
}
