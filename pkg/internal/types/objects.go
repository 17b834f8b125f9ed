package types

// ListObjectsRequest 对象列表查询参数.
type ListObjectsRequest struct {
	Prefix    string `form:"prefix" json:"prefix,omitempty"`       // 可选：对象键前缀
	Recursive bool   `form:"recursive" json:"recursive,omitempty"` // 可选：是否递归列出子目录
	MaxKeys   int    `form:"max_keys,default=1000" json:"max_keys,omitempty" rule:"omitempty,min=1,max=10000"`
}

// ObjectInfo 单个对象信息.
type ObjectInfo struct {
	Name         string `json:"name"`          // 对象键
	Size         int64  `json:"size"`          // 大小（字节）
	ETag         string `json:"etag"`          // 实体标签
	LastModified string `json:"last_modified"` // 最后修改时间 (RFC3339)
	IsDir        bool   `json:"is_dir"`        // 是否为目录前缀
	ContentType  string `json:"content_type,omitempty"`
}

// ListObjectsResponse 对象列表.
type ListObjectsResponse struct {
	Bucket  string       `json:"bucket"`
	Prefix  string       `json:"prefix,omitempty"`
	Objects []ObjectInfo `json:"objects"`
	Total   int          `json:"total"`
}

// UploadObjectResponse 对象上传与索引流水线结果.
type UploadObjectResponse struct {
	Success      bool   `json:"success"`
	Bucket       string `json:"bucket"`
	ObjectName   string `json:"object_name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
	ETag         string `json:"etag,omitempty"`
	Uploaded     bool   `json:"uploaded"`                // 对象是否已写入存储
	Indexed      bool   `json:"indexed"`                 // 是否已写入全文索引
	IsDuplicate  bool   `json:"is_duplicate,omitempty"`  // 内容哈希命中已有文档
	DocumentID   string `json:"document_id,omitempty"`   // 索引文档 ID
	IndexName    string `json:"index_name,omitempty"`    // 索引名
	DocumentType string `json:"document_type,omitempty"` // 识别出的文档类型
	PublicURL    string `json:"public_url,omitempty"`    // 公共访问 URL（桶为公共读时）
	Error        string `json:"error,omitempty"`         // 部分失败时的说明
}

// DeleteObjectResponse 对象删除结果.
type DeleteObjectResponse struct {
	Success    bool   `json:"success"`
	Bucket     string `json:"bucket"`
	ObjectName string `json:"object_name"`
	Removed    bool   `json:"removed"` // 是否同时移除了索引文档
}

// CopyObjectRequest 对象复制请求.
type CopyObjectRequest struct {
	SourceBucket string `json:"source_bucket" binding:"required"` // 源桶
	SourceObject string `json:"source_object" binding:"required"` // 源对象键
	DestBucket   string `json:"dest_bucket" binding:"required"`   // 目标桶
	DestObject   string `json:"dest_object,omitempty"`            // 目标对象键，缺省沿用源键
}

// CopyObjectResponse 对象复制结果.
type CopyObjectResponse struct {
	Success      bool   `json:"success"`
	SourceBucket string `json:"source_bucket"`
	SourceObject string `json:"source_object"`
	DestBucket   string `json:"dest_bucket"`
	DestObject   string `json:"dest_object"`
	ETag         string `json:"etag,omitempty"`
}

// PresignedURLRequest 预签名 URL 请求.
type PresignedURLRequest struct {
	Method        string `form:"method,default=GET" json:"method,omitempty" rule:"omitempty,oneof=GET PUT"` // 可选：GET 下载 / PUT 上传
	ExpirySeconds int    `form:"expiry,default=3600" json:"expiry,omitempty" rule:"omitempty,min=1,max=604800"`
}

// PresignedURLResponse 预签名 URL 结果.
type PresignedURLResponse struct {
	Bucket     string `json:"bucket"`
	ObjectName string `json:"object_name"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	ExpiresIn  int    `json:"expires_in"` // 有效期（秒）
}

// PublicURLResponse 公共访问 URL 结果.
type PublicURLResponse struct {
	Bucket     string `json:"bucket"`
	ObjectName string `json:"object_name"`
	URL        string `json:"url"`
	Public     bool   `json:"public"` // 桶是否具备公共读策略
}

// ObjectStatResponse 对象元数据.
type ObjectStatResponse struct {
	Bucket       string            `json:"bucket"`
	ObjectName   string            `json:"object_name"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag"`
	ContentType  string            `json:"content_type"`
	LastModified string            `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"` // 用户元数据
}
