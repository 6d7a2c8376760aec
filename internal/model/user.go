package model

import "time"

// User 用户（关注/粉丝计数为冗余值，由事务内增减维护，reconciler 定期校准）
type User struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FullName       string    `gorm:"type:varchar(100);not null" json:"fullName"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"type:varchar(255);not null" json:"-"`
	Avatar         string    `gorm:"type:varchar(512)" json:"avatar"`
	Bio            string    `gorm:"type:text" json:"bio"`
	FollowerCount  int64     `gorm:"not null;default:0" json:"followerCount"`
	FollowingCount int64     `gorm:"not null;default:0" json:"followingCount"`
	// 个人主页隐私开关
	ShowFollowers bool      `gorm:"not null;default:true" json:"showFollowers"`
	ShowFollowing bool      `gorm:"not null;default:true" json:"showFollowing"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// AuthorSummary 动态/评论里展示的作者摘要
type AuthorSummary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// Summary 提取作者摘要
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{ID: u.ID, FullName: u.FullName, Avatar: u.Avatar}
}
