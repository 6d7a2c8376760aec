package model

import "time"

// HiddenPost 用户主动隐藏的帖子，(user, post) 唯一；只影响该用户自己的信息流
type HiddenPost struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_hidden_user;index:idx_hidden_pair,unique;not null"`
	PostID    string `gorm:"type:varchar(36);not null;index:idx_hidden_pair,unique"`
	CreatedAt time.Time
}

func (HiddenPost) TableName() string { return "hidden_posts" }
