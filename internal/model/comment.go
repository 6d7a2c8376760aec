package model

import "time"

// Comment 评论，parent_id 非空时为回复（只嵌套一层展示）
type Comment struct {
	ID       string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID   string  `gorm:"type:varchar(36);index:idx_comment_post;not null" json:"postId"`
	AuthorID string  `gorm:"type:varchar(36);index:idx_comment_author;not null" json:"authorId"`
	ParentID *string `gorm:"type:varchar(36);index:idx_comment_parent" json:"parentId,omitempty"`
	Content  string  `gorm:"type:text;not null" json:"content"`

	TotalReactions int64 `gorm:"not null;default:0" json:"totalReactions"`
	LikeCount      int64 `gorm:"not null;default:0" json:"-"`
	LoveCount      int64 `gorm:"not null;default:0" json:"-"`
	HahaCount      int64 `gorm:"not null;default:0" json:"-"`
	WowCount       int64 `gorm:"not null;default:0" json:"-"`
	SadCount       int64 `gorm:"not null;default:0" json:"-"`
	AngryCount     int64 `gorm:"not null;default:0" json:"-"`
	ReplyCount     int64 `gorm:"not null;default:0" json:"replyCount"`

	CreatedAt time.Time `gorm:"index:idx_comment_created" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Comment) TableName() string { return "comments" }

// ReactionCounts 按类型聚合的计数视图
func (c *Comment) ReactionCounts() map[string]int64 {
	return map[string]int64{
		ReactionLike:  c.LikeCount,
		ReactionLove:  c.LoveCount,
		ReactionHaha:  c.HahaCount,
		ReactionWow:   c.WowCount,
		ReactionSad:   c.SadCount,
		ReactionAngry: c.AngryCount,
	}
}
