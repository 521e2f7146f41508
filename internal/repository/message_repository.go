package repository

import (
	"context"
	"zorides_backend/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: tx}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.DB.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := r.DB.WithContext(ctx).Preload("Sender").Preload("Recipient").First(&msg, "id = ?", id).Error
	return &msg, err
}

func (r *MessageRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Preload("Sender").Preload("Recipient")
}

// Between 两个用户之间的私信，按时间升序
func (r *MessageRepository) Between(ctx context.Context, userID, otherID uint, limit int) ([]model.Message, error) {
	db := r.preloaded(ctx).
		Where("group_id IS NULL").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userID, otherID, otherID, userID)
	return newestAscending(db, limit)
}

func (r *MessageRepository) ByGroup(ctx context.Context, groupID string, limit int) ([]model.Message, error) {
	return newestAscending(r.preloaded(ctx).Where("group_id = ?", groupID), limit)
}

// ForUser 用户发送或接收的全部消息，按时间升序
func (r *MessageRepository) ForUser(ctx context.Context, userID uint, limit int) ([]model.Message, error) {
	return newestAscending(r.preloaded(ctx).Where("sender_id = ? OR recipient_id = ?", userID, userID), limit)
}

// newestAscending 取最新的 limit 条，再按时间升序返回
func newestAscending(db *gorm.DB, limit int) ([]model.Message, error) {
	var msgs []model.Message
	if err := db.Order("created_at DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// DirectForUserDesc 用户相关的私信，最新在前，用于会话列表
func (r *MessageRepository) DirectForUserDesc(ctx context.Context, userID uint, limit int) ([]model.Message, error) {
	var msgs []model.Message
	err := r.preloaded(ctx).
		Where("group_id IS NULL AND recipient_id IS NOT NULL").
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// UnreadCounts 按发送者统计用户未读私信数
func (r *MessageRepository) UnreadCounts(ctx context.Context, userID uint) (map[uint]int64, error) {
	type row struct {
		SenderID uint
		Count    int64
	}
	var rows []row
	err := r.DB.WithContext(ctx).Model(&model.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("recipient_id = ? AND group_id IS NULL", userID).
		Where(map[string]interface{}{"read": false}).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.Count
	}
	return counts, nil
}

// MarkRead 将来自 senderID 的私信标记为已读，返回更新条数
func (r *MessageRepository) MarkRead(ctx context.Context, recipientID, senderID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND group_id IS NULL", recipientID, senderID).
		Where(map[string]interface{}{"read": false}).
		Update("read", true)
	return res.RowsAffected, res.Error
}

// DeleteByUser 删除用户发送或接收的全部消息
func (r *MessageRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("sender_id = ? OR recipient_id = ?", userID, userID).Delete(&model.Message{}).Error
}
