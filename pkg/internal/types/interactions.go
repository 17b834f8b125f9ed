package types

import "time"

// LikeActionRequest 点赞/取消点赞请求.
type LikeActionRequest struct {
	Action string `json:"action,omitempty" rule:"omitempty,oneof=like unlike"` // 可选：like / unlike（缺省按当前状态切换）
	UserID string `json:"userId,omitempty"`                                    // 可选：缺省使用匿名占位用户
}

// LikeResponse 点赞切换结果.
type LikeResponse struct {
	Success      bool   `json:"success"`
	NewsletterID string `json:"newsletterId,omitempty"`
	CommentID    string `json:"commentId,omitempty"`
	IsLiked      bool   `json:"isLiked"`
	LikeCount    int    `json:"likeCount"`
	UserID       string `json:"userId"`
	Timestamp    string `json:"timestamp"` // UTC ISO8601
}

// CommentAuthor 评论作者信息.
type CommentAuthor struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"` // 用户不存在时为 Anonymous
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

// CommentReply 回复项（回复不再嵌套）.
type CommentReply struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	UserID    string        `json:"userId"`
	ParentID  *string       `json:"parentId"`
	LikeCount int           `json:"likeCount"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	Author    CommentAuthor `json:"author"`
}

// CommentItem 顶层评论项，replies 预载前 3 条.
type CommentItem struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	UserID     string         `json:"userId"`
	ParentID   *string        `json:"parentId"`
	LikeCount  int            `json:"likeCount"`
	ReplyCount int            `json:"replyCount"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Author     CommentAuthor  `json:"author"`
	Replies    []CommentReply `json:"replies"`
}

// CommentListRequest 评论列表查询参数.
type CommentListRequest struct {
	Page     int    `form:"page,default=1" rule:"omitempty,min=1"`
	PageSize int    `form:"pageSize,default=20" rule:"omitempty,min=1,max=100"`
	SortBy   string `form:"sortBy,default=latest" rule:"omitempty,oneof=latest popular"` // latest 按时间 / popular 按点赞
}

// CommentListResponse 评论列表.
type CommentListResponse struct {
	Success  bool          `json:"success"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	HasNext  bool          `json:"hasNext"`
	Comments []CommentItem `json:"comments"`
}

// CommentCreateRequest 发表评论请求.
type CommentCreateRequest struct {
	Content  string  `json:"content" binding:"required" rule:"required,min=1,max=1000"` // 评论内容（1-1000 字符）
	ParentID *string `json:"parentId,omitempty"`                                        // 可选：父评论 ID（回复时）
	UserID   string  `json:"userId,omitempty"`                                          // 可选：缺省使用匿名占位用户
}

// CommentCreateResponse 发表评论结果.
type CommentCreateResponse struct {
	Success bool         `json:"success"`
	Data    *CommentItem `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
}

// CommentDeleteResponse 删除评论结果（软删除）.
type CommentDeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CommentRepliesRequest 回复分页查询参数.
type CommentRepliesRequest struct {
	Page     int `form:"page,default=1" rule:"omitempty,min=1"`
	PageSize int `form:"pageSize,default=10" rule:"omitempty,min=1,max=50"`
}

// CommentRepliesResponse 回复分页结果.
type CommentRepliesResponse struct {
	Success  bool           `json:"success"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Replies  []CommentReply `json:"replies"`
}
