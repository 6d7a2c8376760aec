package model

import (
	"time"

	"gorm.io/datatypes"
)

// 帖子类型
const (
	PostTypeOriginal = "original"
	PostTypeShared   = "shared"
)

// 帖子可见性
const (
	PrivacyPublic  = "public"
	PrivacyFriends = "friends"
	PrivacyPrivate = "private"
)

// Post 内容主体。反应/评论/转发计数为冗余值，只通过
// ReactionRepository.ApplyDelta 与各 service 的事务变更。
type Post struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AuthorID string `gorm:"type:varchar(36);index:idx_post_author;not null" json:"authorId"`
	Type     string `gorm:"type:varchar(16);not null;default:original" json:"type"`
	Privacy  string `gorm:"type:varchar(16);not null;default:public;index:idx_post_privacy" json:"privacy"`
	Content  string `gorm:"type:text" json:"content"`

	Images datatypes.JSONSlice[string] `gorm:"type:json" json:"images"`
	Videos datatypes.JSONSlice[string] `gorm:"type:json" json:"videos"`

	// type=shared 时必填，指向被转发的原帖（只解析一层）
	SharedPostID *string `gorm:"type:varchar(36);index:idx_post_shared" json:"sharedPostId,omitempty"`

	TotalReactions int64 `gorm:"not null;default:0" json:"totalReactions"`
	LikeCount      int64 `gorm:"not null;default:0" json:"-"`
	LoveCount      int64 `gorm:"not null;default:0" json:"-"`
	HahaCount      int64 `gorm:"not null;default:0" json:"-"`
	WowCount       int64 `gorm:"not null;default:0" json:"-"`
	SadCount       int64 `gorm:"not null;default:0" json:"-"`
	AngryCount     int64 `gorm:"not null;default:0" json:"-"`
	CommentCount   int64 `gorm:"not null;default:0" json:"commentCount"`
	ShareCount     int64 `gorm:"not null;default:0" json:"shareCount"`

	CreatedAt time.Time `gorm:"index:idx_post_created" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

func IsValidPrivacy(p string) bool {
	return p == PrivacyPublic || p == PrivacyFriends || p == PrivacyPrivate
}

// ReactionCounts 按类型聚合的计数视图
func (p *Post) ReactionCounts() map[string]int64 {
	return map[string]int64{
		ReactionLike:  p.LikeCount,
		ReactionLove:  p.LoveCount,
		ReactionHaha:  p.HahaCount,
		ReactionWow:   p.WowCount,
		ReactionSad:   p.SadCount,
		ReactionAngry: p.AngryCount,
	}
}
