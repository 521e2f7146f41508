package model

import (
	"time"
)

type GroupStatus string

const (
	GroupOpen   GroupStatus = "OPEN"
	GroupFilled GroupStatus = "FILLED"
	GroupClosed GroupStatus = "CLOSED"
)

func (s GroupStatus) Valid() bool {
	switch s {
	case GroupOpen, GroupFilled, GroupClosed:
		return true
	}
	return false
}

// AttendantGroup 活动下的结伴小组；创建者隐式占用一个名额，不写入 group_members
type AttendantGroup struct {
	UUIDBase
	EventID           string        `gorm:"index;type:varchar(36);not null" json:"eventId"`
	Event             *Event        `gorm:"foreignKey:EventID;constraint:false" json:"event,omitempty"`
	CreatorID         uint          `gorm:"index;not null" json:"creatorId"`
	Creator           User          `gorm:"foreignKey:CreatorID;constraint:false" json:"creator"`
	PlanDescription   string        `gorm:"type:text;not null" json:"planDescription"`
	AgeMin            *int          `json:"ageMin"`
	AgeMax            *int          `json:"ageMax"`
	GenderPreference  string        `gorm:"size:20" json:"genderPreference"`
	RideMode          string        `gorm:"size:50" json:"rideMode"`
	RideOwnership     string        `gorm:"size:50" json:"rideOwnership"`
	GroupImage        string        `gorm:"size:255" json:"groupImage"`
	MaxPeople         int           `gorm:"not null" json:"maxPeople"`
	CustomPreferences string        `gorm:"type:text" json:"customPreferences,omitempty"`
	Status            GroupStatus   `gorm:"size:20;index;default:'OPEN'" json:"status"`
	Members           []GroupMember `gorm:"foreignKey:GroupID;constraint:false" json:"members,omitempty"`
}

func (AttendantGroup) TableName() string {
	return "attendant_groups"
}

type MemberStatus string

const (
	MemberInterested MemberStatus = "INTERESTED"
	MemberAccepted   MemberStatus = "ACCEPTED"
	MemberRejected   MemberStatus = "REJECTED"
)

// ActiveMemberStatuses 占用名额的成员状态
var ActiveMemberStatuses = []MemberStatus{MemberInterested, MemberAccepted}

// GroupMember 每个 (group, user) 至多一行，任何状态下都阻止重复申请
type GroupMember struct {
	UUIDBase
	GroupID   string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_group_user" json:"groupId"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_group_user;index" json:"userId"`
	User      User         `gorm:"foreignKey:UserID;constraint:false" json:"user"`
	Status    MemberStatus `gorm:"size:20;index;not null" json:"status"`
	JoinedAt  time.Time    `json:"joinedAt"`
	DecidedAt *time.Time   `json:"decidedAt"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
