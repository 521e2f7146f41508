package repository

import (
	"context"
	"zorides_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) WithTx(tx *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: tx}
}

func (r *GroupRepository) Create(ctx context.Context, group *model.AttendantGroup) error {
	return r.DB.WithContext(ctx).Create(group).Error
}

func (r *GroupRepository) FindByID(ctx context.Context, id string) (*model.AttendantGroup, error) {
	var group model.AttendantGroup
	err := r.DB.WithContext(ctx).First(&group, "id = ?", id).Error
	return &group, err
}

// FindByIDForUpdate 事务内读取并锁定小组行；sqlite 不支持 FOR UPDATE，依赖其单写者语义
func (r *GroupRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.AttendantGroup, error) {
	db := r.DB.WithContext(ctx)
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var group model.AttendantGroup
	err := db.First(&group, "id = ?", id).Error
	return &group, err
}

func (r *GroupRepository) FindDetail(ctx context.Context, id string) (*model.AttendantGroup, error) {
	var group model.AttendantGroup
	err := r.DB.WithContext(ctx).
		Preload("Creator").
		Preload("Event").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User").
		First(&group, "id = ?", id).Error
	return &group, err
}

func (r *GroupRepository) ListByEvent(ctx context.Context, eventID string) ([]model.AttendantGroup, error) {
	var groups []model.AttendantGroup
	err := r.DB.WithContext(ctx).
		Preload("Creator").
		Preload("Members.User").
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) ListByCreator(ctx context.Context, creatorID uint) ([]model.AttendantGroup, error) {
	var groups []model.AttendantGroup
	err := r.DB.WithContext(ctx).Preload("Event").
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&groups).Error
	return groups, err
}

// Recent 信息流用：指定状态下最新创建的小组
func (r *GroupRepository) Recent(ctx context.Context, statuses []model.GroupStatus, limit int) ([]model.AttendantGroup, error) {
	var groups []model.AttendantGroup
	err := r.DB.WithContext(ctx).
		Preload("Creator").
		Preload("Event").
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Limit(limit).
		Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&model.AttendantGroup{}).Where("id = ?", id).Updates(fields).Error
}

func (r *GroupRepository) UpdateStatus(ctx context.Context, id string, status model.GroupStatus) error {
	return r.DB.WithContext(ctx).Model(&model.AttendantGroup{}).Where("id = ?", id).Update("status", status).Error
}

func (r *GroupRepository) IDsByCreator(ctx context.Context, creatorID uint) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.AttendantGroup{}).Where("creator_id = ?", creatorID).Pluck("id", &ids).Error
	return ids, err
}

// DeleteManyCascade 删除小组及其成员和小组消息，需在事务内调用
func (r *GroupRepository) DeleteManyCascade(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.DB.WithContext(ctx)
	if err := db.Where("group_id IN ?", ids).Delete(&model.GroupMember{}).Error; err != nil {
		return err
	}
	if err := db.Where("group_id IN ?", ids).Delete(&model.Message{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&model.AttendantGroup{}).Error
}

func (r *GroupRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.WithTx(tx).DeleteManyCascade(ctx, []string{id})
	})
}

// MemberCounts 各小组的成员行数（不含创建者）
func (r *GroupRepository) MemberCounts(ctx context.Context, groupIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}
	type row struct {
		GroupID string
		Count   int64
	}
	var rows []row
	err := r.DB.WithContext(ctx).Model(&model.GroupMember{}).
		Select("group_id, COUNT(*) AS count").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GroupID] = row.Count
	}
	return counts, nil
}

// GroupWithCount 管理后台小组列表
type GroupWithCount struct {
	model.AttendantGroup
	MemberCount int64 `json:"memberCount"`
}

func (r *GroupRepository) ListWithCounts(ctx context.Context) ([]GroupWithCount, error) {
	var groups []model.AttendantGroup
	if err := r.DB.WithContext(ctx).Preload("Creator").Preload("Event").Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, err
	}
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	counts, err := r.MemberCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]GroupWithCount, len(groups))
	for i, g := range groups {
		result[i] = GroupWithCount{AttendantGroup: g, MemberCount: counts[g.ID]}
	}
	return result, nil
}
