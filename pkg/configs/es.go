package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	DefaultESHost          = "localhost"       // 默认Elasticsearch主机
	DefaultESPort          = 9200              // 默认Elasticsearch端口
	DefaultESUseSSL        = false             // 默认是否使用SSL
	DefaultESArticleIndex  = "minio_articles"  // 默认文章索引名称
	DefaultESPipelineIndex = "minio_documents" // 默认管道回退索引名称
	DefaultESFileIndex     = "minio_files"     // 默认文件元数据索引名称
	DefaultESTimeout       = 30                // 默认请求超时（秒）
)

type (
	// ESConfig Elasticsearch 配置.
	ESConfig struct {
		Host          string `mapstructure:"host"           rule:"hostname"`
		Port          int    `mapstructure:"port"           rule:"min=1,max=65535"`
		Username      string `mapstructure:"username"`
		Password      string `mapstructure:"password"`
		UseSSL        bool   `mapstructure:"use_ssl"`
		ArticleIndex  string `mapstructure:"article_index"  rule:"required"`
		PipelineIndex string `mapstructure:"pipeline_index" rule:"required"`
		FileIndex     string `mapstructure:"file_index"     rule:"required"`
		Timeout       int    `mapstructure:"timeout"        rule:"min=1,max=300"`
	}
)

// GetAddressURL 获取完整的 Elasticsearch 地址.
func (c *ESConfig) GetAddressURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// HasAuth 是否配置了基础认证.
func (c *ESConfig) HasAuth() bool {
	return c.Username != "" && c.Password != ""
}

// setDefaults 设置 Elasticsearch 配置的默认值.
func (c *ESConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("elasticsearch.host", DefaultESHost)
	v.SetDefault("elasticsearch.port", DefaultESPort)
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.use_ssl", DefaultESUseSSL)
	v.SetDefault("elasticsearch.article_index", DefaultESArticleIndex)
	v.SetDefault("elasticsearch.pipeline_index", DefaultESPipelineIndex)
	v.SetDefault("elasticsearch.file_index", DefaultESFileIndex)
	v.SetDefault("elasticsearch.timeout", DefaultESTimeout)
}
