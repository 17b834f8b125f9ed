package model

import "time"

// 评论状态与点赞目标类型。
const (
	CommentStatusPublished = "PUBLISHED"
	CommentStatusDeleted   = "DELETED"

	TargetTypeNewsletter = "NEWSLETTER"
	TargetTypeComment    = "COMMENT"
)

// Comment 评论表，支持一级回复（ParentID 指向主评论）。
// 删除为软删除：status 置为 DELETED，行保留。
type Comment struct {
	ID         string    `gorm:"column:id;primaryKey;size:64"        json:"id"`
	Content    string    `gorm:"column:content;type:text"           json:"content"`
	UserID     string    `gorm:"column:userId;size:64;index"        json:"userId"`
	TargetID   string    `gorm:"column:targetId;size:64;index"      json:"targetId"`
	TargetType string    `gorm:"column:targetType;size:32"          json:"targetType"`
	ParentID   *string   `gorm:"column:parentId;size:64;index"      json:"parentId"`
	LikeCount  int       `gorm:"column:likeCount"                   json:"likeCount"`
	Status     string    `gorm:"column:status;size:32;index"        json:"status"`
	CreatedAt  time.Time `gorm:"column:createdAt"                   json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updatedAt"                   json:"updatedAt"`
}

// TableName 指定既有表名。
func (Comment) TableName() string { return "comments" }
