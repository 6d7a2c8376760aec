package model

import "time"

// 通知类型
const (
	NotifyFollow   = "follow"
	NotifyReaction = "reaction"
	NotifyComment  = "comment"
)

// Notification 站内通知
type Notification struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index:idx_notify_user;not null" json:"userId"`
	ActorID   string    `gorm:"type:varchar(36);not null" json:"actorId"`
	Kind      string    `gorm:"type:varchar(16);not null" json:"kind"`
	PostID    *string   `gorm:"type:varchar(36)" json:"postId,omitempty"`
	CommentID *string   `gorm:"type:varchar(36)" json:"commentId,omitempty"`
	Read      bool      `gorm:"not null;default:false;index:idx_notify_read" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
