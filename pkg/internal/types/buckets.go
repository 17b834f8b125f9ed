package types

// CreateBucketRequest 创建存储桶请求.
type CreateBucketRequest struct {
	BucketName string `json:"bucket_name" binding:"required" rule:"required,min=3,max=63"` // 桶名（3-63 字符，小写字母/数字/中划线）
}

// BucketInfo 单个存储桶信息.
type BucketInfo struct {
	Name         string `json:"name"`          // 桶名
	CreationDate string `json:"creation_date"` // 创建时间 (RFC3339)
}

// ListBucketsResponse 存储桶列表.
type ListBucketsResponse struct {
	Buckets []BucketInfo `json:"buckets"`
	Total   int          `json:"total"`
}

// CreateBucketResponse 创建存储桶结果.
type CreateBucketResponse struct {
	Success bool   `json:"success"`
	Bucket  string `json:"bucket"`
	Message string `json:"message,omitempty"`
}

// DeleteBucketResponse 删除存储桶结果.
type DeleteBucketResponse struct {
	Success bool   `json:"success"`
	Bucket  string `json:"bucket"`
	Message string `json:"message,omitempty"`
}

// BucketPolicyRequest 设置桶策略请求，policy 为标准 S3 策略 JSON 文档.
type BucketPolicyRequest struct {
	Policy map[string]any `json:"policy" binding:"required"`
}

// BucketPolicyResponse 桶策略查询结果，策略不存在时 policy 为空对象.
type BucketPolicyResponse struct {
	Bucket string         `json:"bucket"`
	Policy map[string]any `json:"policy"`
}

// MakeBucketPublicResponse 设置桶公共读策略结果.
type MakeBucketPublicResponse struct {
	Success bool   `json:"success"`
	Bucket  string `json:"bucket"`
	Public  bool   `json:"public"`
}

// StorageInfoResponse 当前存储后端信息.
type StorageInfoResponse struct {
	Backend    string   `json:"backend"`               // minio 或 oss
	Endpoint   string   `json:"endpoint"`              // 服务地址
	Secure     bool     `json:"secure"`                // 是否启用 TLS
	Configured bool     `json:"configured"`            // 必填配置是否齐全
	Missing    []string `json:"missing,omitempty"`     // 缺失的配置项
	PublicHost string   `json:"public_host,omitempty"` // 对外访问地址（构造公共 URL 用）
}
