package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UUIDBase 业务实体主键，不做软删除，删除时级联清理
// swagger:model
type UUIDBase struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

// StringList 以逗号拼接存储的字符串列表（媒体地址等）
type StringList string

func NewStringList(items []string) StringList {
	clean := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			clean = append(clean, it)
		}
	}
	return StringList(strings.Join(clean, ","))
}

func (s StringList) Items() []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(string(s), ",")
}

func (s StringList) First() string {
	items := s.Items()
	if len(items) == 0 {
		return ""
	}
	return items[0]
}

func (s StringList) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

func (s *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewStringList(items)
	return nil
}
