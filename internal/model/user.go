package model

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string    `gorm:"size:100;not null" json:"name"`
	Email    string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string    `gorm:"size:100;not null" json:"-"`
	Role     UserRole  `gorm:"size:10;default:'user'" json:"role"`
	Avatar   string    `gorm:"size:255" json:"avatar"`
	Bio      string    `gorm:"size:500" json:"bio"`
	Age      *int      `json:"age"`
	Gender   string    `gorm:"size:20" json:"gender"`
	State    string    `gorm:"size:100" json:"state"`
	District string    `gorm:"size:100" json:"district"`
	Locality string    `gorm:"size:100" json:"locality"`
	HasRide  bool      `gorm:"default:false" json:"hasRide"`
	LastSeen time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
