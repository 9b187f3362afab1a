package storagefactory

import (
	"context"
	"fmt"

	"revizly/internal/config"
	"revizly/internal/pkg/storage"
	"revizly/internal/pkg/storage/local"
	"revizly/internal/pkg/storage/oss"
)

// NewStorage 根据配置创建附件存储实例，未配置类型时使用本地存储
func NewStorage(ctx context.Context, cfg *config.StorageConfig) (storage.Storage, error) {
	switch cfg.Type {
	case "", "local":
		basePath, baseURL := ".", ""
		if cfg.Local != nil {
			basePath, baseURL = cfg.Local.BasePath, cfg.Local.BaseURL
		}
		if basePath == "" {
			basePath = "."
		}
		return local.NewLocalStorage(basePath, baseURL)
	case "oss":
		if cfg.OSS == nil {
			return nil, fmt.Errorf("OSS storage config is required")
		}
		return oss.NewOSSStorage(
			cfg.OSS.Endpoint,
			cfg.OSS.Bucket,
			cfg.OSS.AccessKeyID,
			cfg.OSS.AccessKeySecret,
			cfg.OSS.PresignExpiry,
		)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
