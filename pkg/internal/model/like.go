package model

import "time"

// Like 点赞记录，(userId, targetId, targetType) 逻辑唯一，
// 切换点赞通过插入/删除行并同步目标表计数完成。
type Like struct {
	ID         string    `gorm:"column:id;primaryKey;size:64"              json:"id"`
	UserID     string    `gorm:"column:userId;size:64;index:idx_like_user" json:"userId"`
	TargetID   string    `gorm:"column:targetId;size:64;index:idx_like_target"  json:"targetId"`
	TargetType string    `gorm:"column:targetType;size:32;index:idx_like_target" json:"targetType"`
	CreatedAt  time.Time `gorm:"column:createdAt"                          json:"createdAt"`
}

// TableName 指定既有表名。
func (Like) TableName() string { return "likes" }
