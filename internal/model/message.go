package model

// Message 私信或群组消息；系统通知也以消息形式持久化，创建后不可修改内容
type Message struct {
	UUIDBase
	SenderID        uint    `gorm:"index;not null" json:"senderId"`
	Sender          User    `gorm:"foreignKey:SenderID;constraint:false" json:"sender"`
	RecipientID     *uint   `gorm:"index" json:"recipientId"`
	Recipient       *User   `gorm:"foreignKey:RecipientID;constraint:false" json:"recipient,omitempty"`
	GroupID         *string `gorm:"index;type:varchar(36)" json:"groupId"`
	Content         string  `gorm:"type:text;not null" json:"content"`
	IsSystemMessage bool    `gorm:"default:false" json:"isSystemMessage"`
	Read            bool    `gorm:"default:false;index" json:"read"`
}

func (Message) TableName() string {
	return "messages"
}
