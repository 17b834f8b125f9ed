package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPipelineEnabled       = true   // 默认启用文档摄取管道
	DefaultPipelineMaxContent    = 50000  // 默认索引内容上限（字符）
	DefaultPresignExpiryHours    = 24 * 7 // 公共URL不可用时回退签名URL的有效期（小时）
	DefaultPipelineMaxURLs       = 100    // 提取URL数量上限
	DefaultPipelineTitleMax      = 200    // 纯文本标题截断长度
	DefaultPipelineSummaryMax    = 500    // 摘要截断长度
	DefaultPipelineDedupCacheTTL = 24     // 内容哈希去重缓存TTL（小时）
)

type (
	// PipelineConfig 文档摄取管道配置.
	// DocumentTypes 限定参与管道的格式子集（markdown/html/text/rst），
	// 未配置的类型即使可提取也不会入索引.
	PipelineConfig struct {
		Enabled        bool     `mapstructure:"enabled"`
		DocumentTypes  []string `mapstructure:"document_types"   rule:"dive,oneof=markdown html text rst"`
		MaxContentSize int      `mapstructure:"max_content_size" rule:"min=1"`
		PresignExpiry  int      `mapstructure:"presign_expiry_hours" rule:"min=1,max=168"`
		MaxURLs        int      `mapstructure:"max_urls"         rule:"min=1"`
		DedupCacheTTL  int      `mapstructure:"dedup_cache_ttl_hours" rule:"min=1"`
	}
)

// GetPresignExpiry 返回回退签名URL的有效期.
func (c *PipelineConfig) GetPresignExpiry() time.Duration {
	return time.Duration(c.PresignExpiry) * time.Hour
}

// GetDedupCacheTTL 返回去重缓存的TTL.
func (c *PipelineConfig) GetDedupCacheTTL() time.Duration {
	return time.Duration(c.DedupCacheTTL) * time.Hour
}

// TypeEnabled 判断某文档类型是否在配置的管道子集内.
func (c *PipelineConfig) TypeEnabled(docType string) bool {
	for _, t := range c.DocumentTypes {
		if t == docType {
			return true
		}
	}

	return false
}

// setDefaults 设置管道配置的默认值.
func (c *PipelineConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.enabled", DefaultPipelineEnabled)
	v.SetDefault("pipeline.document_types", []string{"markdown", "html"})
	v.SetDefault("pipeline.max_content_size", DefaultPipelineMaxContent)
	v.SetDefault("pipeline.presign_expiry_hours", DefaultPresignExpiryHours)
	v.SetDefault("pipeline.max_urls", DefaultPipelineMaxURLs)
	v.SetDefault("pipeline.dedup_cache_ttl_hours", DefaultPipelineDedupCacheTTL)
}
