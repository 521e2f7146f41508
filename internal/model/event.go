package model

import (
	"fmt"
	"time"
)

type EventStatus string

const (
	EventOpen      EventStatus = "OPEN"
	EventFilled    EventStatus = "FILLED"
	EventClosed    EventStatus = "CLOSED"
	EventCancelled EventStatus = "CANCELLED"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventOpen, EventFilled, EventClosed, EventCancelled:
		return true
	}
	return false
}

type Event struct {
	UUIDBase
	Title       string           `gorm:"size:200;not null" json:"title"`
	Description string           `gorm:"type:text;not null" json:"description"`
	State       string           `gorm:"size:100;index:idx_event_location" json:"state"`
	District    string           `gorm:"size:100;index:idx_event_location" json:"district"`
	Locality    string           `gorm:"size:100" json:"locality"`
	Venue       string           `gorm:"size:200" json:"venue"`
	Date        time.Time        `gorm:"index" json:"date"`
	CreatorID   uint             `gorm:"index;not null" json:"creatorId"`
	Creator     User             `gorm:"foreignKey:CreatorID;constraint:false" json:"creator"`
	Status      EventStatus      `gorm:"size:20;index;default:'OPEN'" json:"status"`
	MediaURLs   StringList       `gorm:"column:media_urls;type:text" json:"mediaUrls"`
	Groups      []AttendantGroup `gorm:"foreignKey:EventID;constraint:false" json:"groups,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

// Location 展示用地址：locality, district, state
func (e *Event) Location() string {
	return fmt.Sprintf("%s, %s, %s", e.Locality, e.District, e.State)
}
