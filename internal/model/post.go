package model

type ReactionType string

const (
	ReactionHelpFindFriend ReactionType = "HELP_FIND_FRIEND"
	ReactionHitMeUp        ReactionType = "HIT_ME_UP"
)

func (t ReactionType) Valid() bool {
	return t == ReactionHelpFindFriend || t == ReactionHitMeUp
}

type Post struct {
	UUIDBase
	UserID    uint       `gorm:"index;not null" json:"userId"`
	User      User       `gorm:"foreignKey:UserID;constraint:false" json:"user"`
	EventID   *string    `gorm:"index;type:varchar(36)" json:"eventId"`
	Event     *Event     `gorm:"foreignKey:EventID;constraint:false" json:"event,omitempty"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	MediaURLs StringList `gorm:"column:media_urls;type:text" json:"mediaUrls"`
	Reactions []Reaction `gorm:"foreignKey:PostID;constraint:false" json:"reactions"`
	Comments  []Comment  `gorm:"foreignKey:PostID;constraint:false" json:"comments"`
}

func (Post) TableName() string {
	return "posts"
}

// Reaction 每个用户对同一帖子至多一条
type Reaction struct {
	UUIDBase
	PostID string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_post_user" json:"postId"`
	UserID uint         `gorm:"not null;uniqueIndex:idx_post_user" json:"userId"`
	Type   ReactionType `gorm:"size:30;not null" json:"type"`
}

func (Reaction) TableName() string {
	return "reactions"
}

type Comment struct {
	UUIDBase
	PostID   string  `gorm:"index;type:varchar(36);not null" json:"postId"`
	UserID   uint    `gorm:"index;not null" json:"userId"`
	User     User    `gorm:"foreignKey:UserID;constraint:false" json:"user"`
	ParentID *string `gorm:"index;type:varchar(36)" json:"parentId"`
	Content  string  `gorm:"type:text;not null" json:"content"`
}

func (Comment) TableName() string {
	return "comments"
}
