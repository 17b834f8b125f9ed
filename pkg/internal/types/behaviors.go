package types

// RecordBehaviorRequest 行为上报请求.
type RecordBehaviorRequest struct {
	BehaviorType  string         `json:"behavior_type" binding:"required"` // 行为类型（枚举校验）
	UserID        string         `json:"user_id,omitempty"`                // 可选：匿名行为为空
	SessionID     string         `json:"session_id,omitempty"`             // 可选：缺省从 X-Session-ID 头取，再缺省生成
	TargetType    string         `json:"target_type,omitempty"`
	TargetID      string         `json:"target_id,omitempty"`
	ActionDetails map[string]any `json:"action_details,omitempty"` // 行为细节（保存在 metadata 信封内）
	Metadata      map[string]any `json:"metadata,omitempty"`       // 附加元数据
}

// ClientInfo 上报请求携带的客户端上下文，由 HTTP 层从请求头提取.
type ClientInfo struct {
	IPAddress string
	UserAgent string
	Referer   string
}

// RecordBehaviorResponse 行为上报结果.
type RecordBehaviorResponse struct {
	Success    bool   `json:"success"`
	BehaviorID string `json:"behavior_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	Error      string `json:"error,omitempty"` // 批量上报的单条失败说明
}

// BehaviorQueryRequest 行为查询参数.
type BehaviorQueryRequest struct {
	UserID       string `form:"user_id"`
	SessionID    string `form:"session_id"`
	BehaviorType string `form:"behavior_type"`
	TargetType   string `form:"target_type"`
	TargetID     string `form:"target_id"`
	StartDate    string `form:"start_date"` // YYYY-MM-DD
	EndDate      string `form:"end_date"`   // YYYY-MM-DD（含当日）
	Page         int    `form:"page,default=1" rule:"omitempty,min=1"`
	Size         int    `form:"size,default=20" rule:"omitempty,min=1,max=100"`
}

// BehaviorRecord 单条行为记录.
type BehaviorRecord struct {
	ID            string         `json:"id"`
	UserID        *string        `json:"user_id"`
	BehaviorType  string         `json:"behavior_type"`
	TargetType    string         `json:"target_type"`
	TargetID      string         `json:"target_id"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ActionDetails map[string]any `json:"action_details,omitempty"`
	CreatedAt     string         `json:"created_at"`
}

// BehaviorQueryResponse 行为查询结果.
type BehaviorQueryResponse struct {
	Behaviors []BehaviorRecord `json:"behaviors"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	Size      int              `json:"size"`
}

// BehaviorStatisticsRequest 行为统计查询参数.
type BehaviorStatisticsRequest struct {
	UserID       string `form:"user_id"`
	BehaviorType string `form:"behavior_type"`
	Days         int    `form:"days,default=7" rule:"omitempty,min=1,max=365"`
}

// StatPeriod 统计时间窗口.
type StatPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// BehaviorStatistics 行为统计汇总.
type BehaviorStatistics struct {
	TotalBehaviors int64            `json:"total_behaviors"`
	UniqueUsers    int64            `json:"unique_users"`
	UniqueSessions int64            `json:"unique_sessions"`
	BehaviorCounts map[string]int64 `json:"behavior_counts"` // 按行为类型计数
}

// BehaviorStatisticsResponse 行为统计结果.
type BehaviorStatisticsResponse struct {
	BehaviorStatistics
	Period StatPeriod `json:"period"`
}

// PopularTarget 热门目标项.
type PopularTarget struct {
	TargetID     string `json:"target_id"`
	AccessCount  int64  `json:"access_count"`
	UniqueUsers  int64  `json:"unique_users"`
	LastAccessed string `json:"last_accessed"`
}

// PopularTargetsRequest 热门目标查询参数.
type PopularTargetsRequest struct {
	BehaviorType string `form:"behavior_type"`
	Limit        int    `form:"limit,default=10" rule:"omitempty,min=1,max=100"`
	Days         int    `form:"days,default=7" rule:"omitempty,min=1,max=365"`
}

// PopularTargetsResponse 热门目标结果.
type PopularTargetsResponse struct {
	TargetType string          `json:"target_type"`
	Targets    []PopularTarget `json:"targets"`
	Period     StatPeriod      `json:"period"`
}

// BatchRecordResponse 批量行为上报结果.
type BatchRecordResponse struct {
	Total   int                      `json:"total"`
	Success int                      `json:"success"`
	Failed  int                      `json:"failed"`
	Results []RecordBehaviorResponse `json:"results"`
}

// PageMeta 分页信息.
type PageMeta struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// UserTimelineRequest 用户行为时间线查询参数.
type UserTimelineRequest struct {
	Days int `form:"days,default=7" rule:"omitempty,min=1,max=365"`
	Page int `form:"page,default=1" rule:"omitempty,min=1"`
	Size int `form:"size,default=50" rule:"omitempty,min=1,max=200"`
}

// UserTimelineResponse 用户行为时间线.
type UserTimelineResponse struct {
	UserID     string             `json:"user_id"`
	Timeline   []BehaviorRecord   `json:"timeline"`
	Statistics BehaviorStatistics `json:"statistics"`
	Period     StatPeriod         `json:"period"`
	Pagination PageMeta           `json:"pagination"`
}

// SaveProgressRequest 阅读进度保存请求，前端按组件拆分上报.
type SaveProgressRequest struct {
	UserID          string           `json:"userId" binding:"required"`
	DocumentID      string           `json:"documentId" binding:"required"`
	SessionID       string           `json:"sessionId" binding:"required"`
	OverallProgress map[string]any   `json:"overallProgress,omitempty"` // 整体进度
	SectionProgress []map[string]any `json:"sectionProgress,omitempty"` // 分节进度
	ScrollBehavior  map[string]any   `json:"scrollBehavior,omitempty"`  // 滚动行为
	Insights        map[string]any   `json:"insights,omitempty"`        // 阅读洞察
	SaveType        string           `json:"saveType,omitempty"`        // auto / manual / exit
	Timestamp       string           `json:"timestamp,omitempty"`
	ClientVersion   string           `json:"clientVersion,omitempty"`
}

// SavedComponent 单个已保存的进度组件.
type SavedComponent struct {
	Type    string                   `json:"type"` // overall_progress / section_progress / scroll_behavior / insights
	Count   int                      `json:"count,omitempty"`
	Result  *RecordBehaviorResponse  `json:"result,omitempty"`
	Results []RecordBehaviorResponse `json:"results,omitempty"`
}

// SaveProgressResponse 阅读进度保存结果.
type SaveProgressResponse struct {
	Success         bool             `json:"success"`
	Message         string           `json:"message,omitempty"`
	SavedComponents []SavedComponent `json:"saved_components"`
	Errors          []string         `json:"errors,omitempty"`
}

// ReadingHistory 阅读历史汇总.
type ReadingHistory struct {
	TotalSessions      int     `json:"total_sessions"`
	TotalReadingTime   float64 `json:"total_reading_time"`
	AverageSessionTime float64 `json:"average_session_time"`
	LastReadTime       string  `json:"last_read_time,omitempty"`
}

// ReadingProgressData 阅读进度聚合视图.
type ReadingProgressData struct {
	OverallProgress map[string]any   `json:"overall_progress,omitempty"`
	SectionProgress []map[string]any `json:"section_progress"`
	LastSession     map[string]any   `json:"last_session,omitempty"`
	ReadingHistory  ReadingHistory   `json:"reading_history"`
	Insights        map[string]any   `json:"insights,omitempty"`
	ShouldResume    bool             `json:"should_resume"`
	ResumePosition  float64          `json:"resume_position"`
}

// LoadProgressResponse 阅读进度加载结果.
type LoadProgressResponse struct {
	Success bool                 `json:"success"`
	Data    *ReadingProgressData `json:"data,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// ReadingSessionRequest 阅读会话生命周期请求.
type ReadingSessionRequest struct {
	UserID      string         `json:"user_id" binding:"required"`
	DocumentID  string         `json:"document_id" binding:"required"`
	SessionData map[string]any `json:"session_data" binding:"required"`                         // 会话数据（id/device/action_type 等）
	Action      string         `json:"action" binding:"required" rule:"oneof=start end update"` // start / end / update
}

// ReadingSessionResponse 阅读会话处理结果.
type ReadingSessionResponse struct {
	Success    bool   `json:"success"`
	Action     string `json:"action"`
	SessionID  string `json:"session_id,omitempty"`
	Message    string `json:"message,omitempty"`
	BehaviorID string `json:"behavior_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// ActiveSessionsResponse 活跃阅读会话列表.
type ActiveSessionsResponse struct {
	UserID         string           `json:"user_id"`
	ActiveSessions []map[string]any `json:"active_sessions"`
	Count          int              `json:"count"`
}

// CleanupSessionsRequest 过期会话清理参数.
type CleanupSessionsRequest struct {
	MaxSessionDurationHours int `form:"max_session_duration_hours,default=24" rule:"omitempty,min=1"`
}

// CleanupSessionsResponse 过期会话清理结果.
type CleanupSessionsResponse struct {
	UserID           string `json:"user_id"`
	CleanedSessions  int    `json:"cleaned_sessions"`
	RemainingActive  int    `json:"remaining_active"`
	MaxDurationHours int    `json:"max_duration_hours"`
}

// ReadingAnalyticsRequest 阅读分析查询参数.
type ReadingAnalyticsRequest struct {
	Days int `form:"days,default=30" rule:"omitempty,min=1,max=365"`
}

// ReadingAnalyticsStats 阅读分析统计.
type ReadingAnalyticsStats struct {
	TotalSessions           int              `json:"total_sessions"`
	TotalDocumentsRead      int              `json:"total_documents_read"`
	AvgSessionsPerDay       float64          `json:"avg_sessions_per_day"`
	DeviceDistribution      map[string]int64 `json:"device_distribution"`
	ReadingModeDistribution map[string]int64 `json:"reading_mode_distribution"`
}

// ReadingAnalyticsResponse 用户阅读分析结果.
type ReadingAnalyticsResponse struct {
	UserID       string                `json:"user_id"`
	Period       StatPeriod            `json:"period"`
	Statistics   ReadingAnalyticsStats `json:"statistics"`
	RawDataCount int                   `json:"raw_data_count"`
}

// CleanupBehaviorsRequest 历史行为清理参数.
type CleanupBehaviorsRequest struct {
	Days   int   `form:"days,default=90" rule:"omitempty,min=1"`
	DryRun *bool `form:"dry_run"` // 缺省 true，仅统计不删除
}

// CleanupBehaviorsResponse 历史行为清理结果.
type CleanupBehaviorsResponse struct {
	Message string `json:"message"`
	DryRun  bool   `json:"dry_run"`
	Days    int    `json:"days"`
	Matched int64  `json:"matched"`           // 命中的过期记录数
	Deleted int64  `json:"deleted,omitempty"` // 实际删除数（dry_run 时为 0）
}
