package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// StorageBackend 对象存储后端类型.
type StorageBackend string

const (
	StorageBackendMinIO StorageBackend = "minio"
	StorageBackendOSS   StorageBackend = "oss"
)

const (
	DefaultStorageBackend = StorageBackendMinIO // 默认对象存储后端

	DefaultMinIOEndpoint  = "localhost:9000" // 默认MinIO端点
	DefaultMinIOAccessKey = "minioadmin"     // 默认MinIO访问密钥
	DefaultMinIOSecretKey = "minioadmin"     // 默认MinIO秘密密钥
	DefaultMinIOUseSSL    = false            // 默认MinIO是否使用SSL
	DefaultMinIORegion    = "us-east-1"      // 默认MinIO区域

	DefaultOSSEndpoint = "oss-cn-hangzhou.aliyuncs.com" // 默认OSS端点
	DefaultOSSRegion   = "cn-hangzhou"                  // 默认OSS区域
	DefaultOSSUseSSL   = true                           // 默认OSS是否使用SSL
)

type (
	// StorageConfig 对象存储配置，backend 决定使用哪个后端.
	StorageConfig struct {
		Backend StorageBackend `mapstructure:"backend" rule:"oneof=minio oss"`
		MinIO   MinIOConfig    `mapstructure:"minio"`
		OSS     OSSConfig      `mapstructure:"oss"`
	}

	// MinIOConfig MinIO S3 存储配置.
	MinIOConfig struct {
		Endpoint        string `mapstructure:"endpoint"          rule:"hostname_port"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		UseSSL          bool   `mapstructure:"use_ssl"`
		Region          string `mapstructure:"region"`
	}

	// OSSConfig 阿里云 OSS 存储配置.
	OSSConfig struct {
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		AccessKeySecret string `mapstructure:"access_key_secret"`
		Region          string `mapstructure:"region"`
		UseSSL          bool   `mapstructure:"use_ssl"`
		UseCNAME        bool   `mapstructure:"use_cname"`
		CNAMEDomain     string `mapstructure:"cname_domain"`
	}
)

// GetEndpointURL 获取MinIO完整的端点URL.
func (c *MinIOConfig) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// GetEndpointURL 获取OSS完整的端点URL.
func (c *OSSConfig) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// Scheme 返回OSS的URL协议.
func (c *OSSConfig) Scheme() string {
	if c.UseSSL {
		return "https"
	}

	return "http"
}

// setDefaults 设置对象存储配置的默认值.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", string(DefaultStorageBackend))

	v.SetDefault("storage.minio.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("storage.minio.access_key_id", DefaultMinIOAccessKey)
	v.SetDefault("storage.minio.secret_access_key", DefaultMinIOSecretKey)
	v.SetDefault("storage.minio.use_ssl", DefaultMinIOUseSSL)
	v.SetDefault("storage.minio.region", DefaultMinIORegion)

	v.SetDefault("storage.oss.endpoint", DefaultOSSEndpoint)
	v.SetDefault("storage.oss.access_key_id", "")
	v.SetDefault("storage.oss.access_key_secret", "")
	v.SetDefault("storage.oss.region", DefaultOSSRegion)
	v.SetDefault("storage.oss.use_ssl", DefaultOSSUseSSL)
	v.SetDefault("storage.oss.use_cname", false)
	v.SetDefault("storage.oss.cname_domain", "")
}
