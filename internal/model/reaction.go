package model

import "time"

// 反应目标类型（tagged union 的 tag）
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// 反应类型
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionHaha  = "haha"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

// ReactionTypes 全部合法反应类型
var ReactionTypes = []string{
	ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry,
}

func IsValidReactionType(t string) bool {
	for _, rt := range ReactionTypes {
		if rt == t {
			return true
		}
	}
	return false
}

func IsValidTargetKind(k string) bool { return k == TargetPost || k == TargetComment }

// Reaction 用户对帖子/评论的反应，(user, target) 唯一；
// 换类型时更新既有记录而不是新增一条
type Reaction struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_reaction_user_target" json:"userId"`
	TargetKind string    `gorm:"type:varchar(16);not null;uniqueIndex:ux_reaction_user_target" json:"targetKind"`
	TargetID   string    `gorm:"type:varchar(36);not null;index:idx_reaction_target;uniqueIndex:ux_reaction_user_target" json:"targetId"`
	Type       string    `gorm:"type:varchar(16);not null" json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Reaction) TableName() string { return "reactions" }
