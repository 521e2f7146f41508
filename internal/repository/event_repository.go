package repository

import (
	"context"
	"zorides_backend/internal/model"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{DB: tx}
}

type EventFilter struct {
	State    string
	District string
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.DB.WithContext(ctx).Create(event).Error
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.DB.WithContext(ctx).Preload("Creator").First(&event, "id = ?", id).Error
	return &event, err
}

// FindDetail 活动详情：含小组、小组创建者和成员
func (r *EventRepository) FindDetail(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.DB.WithContext(ctx).
		Preload("Creator").
		Preload("Groups", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Groups.Creator").
		Preload("Groups.Members.User").
		First(&event, "id = ?", id).Error
	return &event, err
}

// List 未取消的活动，按举办日期升序
func (r *EventRepository) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	var events []model.Event
	db := r.DB.WithContext(ctx).Preload("Creator").
		Where("status <> ?", model.EventCancelled)
	if f.State != "" {
		db = db.Where("state = ?", f.State)
	}
	if f.District != "" {
		db = db.Where("district = ?", f.District)
	}
	err := db.Order("date ASC").Find(&events).Error
	return events, err
}

// Recent 信息流用：最新创建的未取消活动
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]model.Event, error) {
	var events []model.Event
	err := r.DB.WithContext(ctx).Preload("Creator").
		Where("status <> ?", model.EventCancelled).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *EventRepository) ListByCreator(ctx context.Context, creatorID uint) ([]model.Event, error) {
	var events []model.Event
	err := r.DB.WithContext(ctx).Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&events).Error
	return events, err
}

func (r *EventRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).Updates(fields).Error
}

func (r *EventRepository) IDsByCreator(ctx context.Context, creatorID uint) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.Event{}).Where("creator_id = ?", creatorID).Pluck("id", &ids).Error
	return ids, err
}

// DeleteCascade 删除活动及其小组、成员、小组消息；帖子保留但解除关联
func (r *EventRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.WithTx(tx).DeleteManyCascade(ctx, []string{id})
	})
}

// DeleteManyCascade 需在事务内调用
func (r *EventRepository) DeleteManyCascade(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.DB.WithContext(ctx)
	var groupIDs []string
	if err := db.Model(&model.AttendantGroup{}).Where("event_id IN ?", ids).Pluck("id", &groupIDs).Error; err != nil {
		return err
	}
	if err := NewGroupRepository(r.DB).DeleteManyCascade(ctx, groupIDs); err != nil {
		return err
	}
	if err := db.Model(&model.Post{}).Where("event_id IN ?", ids).Update("event_id", nil).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&model.Event{}).Error
}

// EventWithCounts 管理后台活动列表
type EventWithCounts struct {
	model.Event
	GroupCount int64 `json:"groupCount"`
	PostCount  int64 `json:"postCount"`
}

func (r *EventRepository) ListWithCounts(ctx context.Context) ([]EventWithCounts, error) {
	var events []model.Event
	if err := r.DB.WithContext(ctx).Preload("Creator").Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}

	type row struct {
		EventID string
		Count   int64
	}
	var groupRows, postRows []row
	if err := r.DB.WithContext(ctx).Model(&model.AttendantGroup{}).
		Select("event_id, COUNT(*) AS count").Group("event_id").Scan(&groupRows).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&model.Post{}).
		Select("event_id, COUNT(*) AS count").Where("event_id IS NOT NULL").Group("event_id").Scan(&postRows).Error; err != nil {
		return nil, err
	}

	groupCounts := make(map[string]int64, len(groupRows))
	for _, r := range groupRows {
		groupCounts[r.EventID] = r.Count
	}
	postCounts := make(map[string]int64, len(postRows))
	for _, r := range postRows {
		postCounts[r.EventID] = r.Count
	}

	result := make([]EventWithCounts, len(events))
	for i, e := range events {
		result[i] = EventWithCounts{Event: e, GroupCount: groupCounts[e.ID], PostCount: postCounts[e.ID]}
	}
	return result, nil
}
