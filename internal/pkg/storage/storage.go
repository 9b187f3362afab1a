package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrNotFound 文件不存在
var ErrNotFound = errors.New("file not found")

// ErrInvalidKey 非法的存储 key（绝对路径或包含 ..）
var ErrInvalidKey = errors.New("invalid storage key")

// UploadPrefix 附件统一存放的目录
const UploadPrefix = "uploads/"

// Storage 附件内容存储接口
type Storage interface {
	// Upload 上传文件，返回访问URL
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download 下载文件，不存在时返回 ErrNotFound
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetPresignedDownloadURL 获取预签名下载URL
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Delete 删除文件，文件不存在视为成功
	Delete(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetFileInfo 获取文件信息
	GetFileInfo(ctx context.Context, key string) (*FileInfo, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// FileInfo 文件信息
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)

// UploadKey 生成附件 key：uploads/<毫秒时间戳><扩展名>
func UploadKey(now time.Time, filename string) string {
	return fmt.Sprintf("%s%d%s", UploadPrefix, now.UnixMilli(), strings.ToLower(path.Ext(filename)))
}

// CleanKey 规范化 key，拒绝越出存储根目录的路径
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
