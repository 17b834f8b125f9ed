// Package model 定义 PostgreSQL 关系模型。
// 表结构沿用既有内容平台的 schema（camelCase 列名），本服务只做读取与计数维护，
// 不负责建表；AutoMigrate 仅用于开发环境与测试。
package model

import "time"

// 文章状态。
const (
	NewsletterStatusPublished = "PUBLISHED"
	NewsletterStatusDraft     = "DRAFT"
)

// Newsletter 文章主表，点赞数/评论数等计数列由交互服务维护。
type Newsletter struct {
	ID                 string     `gorm:"column:id;primaryKey;size:64"   json:"id"`
	Title              string     `gorm:"column:title;size:512"          json:"title"`
	Category           string     `gorm:"column:category;size:128;index" json:"category"`
	SourceURL          string     `gorm:"column:sourceUrl;size:1024"     json:"sourceUrl"`
	ReadTime           int        `gorm:"column:readTime"                json:"readTime"`
	ViewCount          int        `gorm:"column:viewCount"               json:"viewCount"`
	LikeCount          int        `gorm:"column:likeCount"               json:"likeCount"`
	ShareCount         int        `gorm:"column:shareCount"              json:"shareCount"`
	CommentCount       int        `gorm:"column:commentCount"            json:"commentCount"`
	Featured           bool       `gorm:"column:featured"                json:"featured"`
	MemberOnly         bool       `gorm:"column:memberOnly"              json:"memberOnly"`
	Status             string     `gorm:"column:status;size:32;index"    json:"status"`
	PublishedAt        *time.Time `gorm:"column:publishedAt"             json:"publishedAt,omitempty"`
	ContentFileKey     string     `gorm:"column:contentFileKey;size:1024"  json:"contentFileKey"`
	ContentStorageType string     `gorm:"column:contentStorageType;size:32" json:"contentStorageType"`
	// 扩展元数据，JSON 文本存储
	MetadataJSON string    `gorm:"column:metadata;type:jsonb" json:"-"`
	CreatedAt    time.Time `gorm:"column:createdAt"           json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updatedAt"           json:"updatedAt"`
}

// TableName 指定既有表名。
func (Newsletter) TableName() string { return "newsletters" }
