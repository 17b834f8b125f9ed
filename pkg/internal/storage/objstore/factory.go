package objstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/yeisme/objectvault/pkg/configs"
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// Factory 定义创建 ObjectStorage 的工厂函数类型.
type Factory func(ctx context.Context) (ObjectStorage, error)

// factories 存储后端类型到工厂的映射.
var factories = map[configs.StorageBackend]Factory{
	configs.StorageBackendMinIO: newMinIOStore,
	configs.StorageBackendOSS:   newOSSStore,
}

var (
	instMu    sync.Mutex
	instances = map[configs.StorageBackend]ObjectStorage{}
)

// New 根据配置创建（或复用）对象存储实例. 未知后端回退到 MinIO.
func New(ctx context.Context) (ObjectStorage, error) {
	backend := normalizeBackend(configs.GetConfig().Storage.Backend)

	instMu.Lock()
	defer instMu.Unlock()

	if inst, ok := instances[backend]; ok {
		return inst, nil
	}

	factory, ok := factories[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}

	inst, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("init %s storage: %w", backend, err)
	}

	instances[backend] = inst

	return inst, nil
}

// normalizeBackend 校验后端类型，未知值回退到 MinIO 并告警.
func normalizeBackend(backend configs.StorageBackend) configs.StorageBackend {
	switch backend {
	case configs.StorageBackendMinIO, configs.StorageBackendOSS:
		return backend
	}

	nlog.Logger().Warn().
		Str("backend", string(backend)).
		Str("fallback", string(configs.StorageBackendMinIO)).
		Msg("未知的对象存储后端，回退到 MinIO")

	return configs.StorageBackendMinIO
}

// ValidateConfig 检查当前后端的必填配置项，返回缺失项列表，为空表示配置完整.
func ValidateConfig() []string {
	cfg := configs.GetConfig().Storage
	issues := make([]string, 0)

	switch normalizeBackend(cfg.Backend) {
	case configs.StorageBackendMinIO:
		if cfg.MinIO.Endpoint == "" {
			issues = append(issues, "storage.minio.endpoint")
		}

		if cfg.MinIO.AccessKeyID == "" {
			issues = append(issues, "storage.minio.access_key_id")
		}

		if cfg.MinIO.SecretAccessKey == "" {
			issues = append(issues, "storage.minio.secret_access_key")
		}
	case configs.StorageBackendOSS:
		if cfg.OSS.Endpoint == "" {
			issues = append(issues, "storage.oss.endpoint")
		}

		if cfg.OSS.AccessKeyID == "" {
			issues = append(issues, "storage.oss.access_key_id")
		}

		if cfg.OSS.AccessKeySecret == "" {
			issues = append(issues, "storage.oss.access_key_secret")
		}

		if cfg.OSS.UseCNAME && cfg.OSS.CNAMEDomain == "" {
			issues = append(issues, "storage.oss.cname_domain")
		}
	}

	return issues
}
