package model

import "time"

// BehaviorType 用户行为类型，固定枚举，入库前校验。
type BehaviorType string

// 行为类型枚举值。
const (
	// 搜索相关
	BehaviorSearchQuery       BehaviorType = "search_query"
	BehaviorSearchResultClick BehaviorType = "search_result_click"
	BehaviorSearchFilterApply BehaviorType = "search_filter_apply"

	// 文档操作
	BehaviorDocumentView     BehaviorType = "document_view"
	BehaviorDocumentDownload BehaviorType = "document_download"
	BehaviorDocumentUpload   BehaviorType = "document_upload"
	BehaviorDocumentDelete   BehaviorType = "document_delete"
	BehaviorDocumentShare    BehaviorType = "document_share"

	// Newsletter 相关
	BehaviorNewsletterView    BehaviorType = "newsletter_view"
	BehaviorNewsletterLike    BehaviorType = "newsletter_like"
	BehaviorNewsletterShare   BehaviorType = "newsletter_share"
	BehaviorNewsletterComment BehaviorType = "newsletter_comment"

	// 系统操作
	BehaviorUserLogin  BehaviorType = "user_login"
	BehaviorUserLogout BehaviorType = "user_logout"
	BehaviorPageView   BehaviorType = "page_view"
	BehaviorFeatureUse BehaviorType = "feature_use"

	// 存储操作
	BehaviorBucketCreate BehaviorType = "bucket_create"
	BehaviorBucketDelete BehaviorType = "bucket_delete"
	BehaviorObjectList   BehaviorType = "object_list"

	// 阅读行为
	BehaviorReadingSessionStart      BehaviorType = "reading_session_start"
	BehaviorReadingSessionEnd        BehaviorType = "reading_session_end"
	BehaviorReadingProgressUpdate    BehaviorType = "reading_progress_update"
	BehaviorSectionProgressUpdate    BehaviorType = "section_progress_update"
	BehaviorScrollBehaviorTrack      BehaviorType = "scroll_behavior_track"
	BehaviorReadingInsightsGenerated BehaviorType = "reading_insights_generated"
)

var validBehaviorTypes = map[BehaviorType]struct{}{
	BehaviorSearchQuery:              {},
	BehaviorSearchResultClick:        {},
	BehaviorSearchFilterApply:        {},
	BehaviorDocumentView:             {},
	BehaviorDocumentDownload:         {},
	BehaviorDocumentUpload:           {},
	BehaviorDocumentDelete:           {},
	BehaviorDocumentShare:            {},
	BehaviorNewsletterView:           {},
	BehaviorNewsletterLike:           {},
	BehaviorNewsletterShare:          {},
	BehaviorNewsletterComment:        {},
	BehaviorUserLogin:                {},
	BehaviorUserLogout:               {},
	BehaviorPageView:                 {},
	BehaviorFeatureUse:               {},
	BehaviorBucketCreate:             {},
	BehaviorBucketDelete:             {},
	BehaviorObjectList:               {},
	BehaviorReadingSessionStart:      {},
	BehaviorReadingSessionEnd:        {},
	BehaviorReadingProgressUpdate:    {},
	BehaviorSectionProgressUpdate:    {},
	BehaviorScrollBehaviorTrack:      {},
	BehaviorReadingInsightsGenerated: {},
}

// Valid 判断行为类型是否在枚举内。
func (t BehaviorType) Valid() bool {
	_, ok := validBehaviorTypes[t]
	return ok
}

// UserBehavior 用户行为流水，追加写入。
// session_id、ip、user_agent、referer、action_details 等上下文统一合并进
// metadata JSON 信封，按 metadata->>'session_id' 方式过滤查询。
type UserBehavior struct {
	ID         string  `gorm:"column:id;primaryKey;size:64"    json:"id"`
	UserID     *string `gorm:"column:userId;size:64;index"     json:"userId"`
	Action     string  `gorm:"column:action;size:64;index"     json:"action"`
	TargetType string  `gorm:"column:targetType;size:64;index:idx_behavior_target" json:"targetType"`
	TargetID   string  `gorm:"column:targetId;size:255;index:idx_behavior_target"  json:"targetId"`
	// 合并后的元数据信封，JSON 文本
	MetadataJSON string    `gorm:"column:metadata;type:jsonb" json:"-"`
	CreatedAt    time.Time `gorm:"column:createdAt;index"     json:"createdAt"`
}

// TableName 指定既有表名。
func (UserBehavior) TableName() string { return "user_behaviors" }
