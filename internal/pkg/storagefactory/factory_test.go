package storagefactory

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"revizly/internal/config"
	"revizly/internal/pkg/storage"
)

func TestNewStorage(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr bool
	}{
		{
			name: "valid local storage config",
			cfg: &config.StorageConfig{
				Type:  "local",
				Local: &config.LocalConfig{BasePath: tmpDir, BaseURL: "http://localhost:8000"},
			},
		},
		{
			name:    "missing oss config",
			cfg:     &config.StorageConfig{Type: "oss"},
			wantErr: true,
		},
		{
			name:    "unsupported storage type",
			cfg:     &config.StorageConfig{Type: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStorage(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewStorage() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStorage() unexpected error: %v", err)
			}
			if s.GetStorageType() != "local" {
				t.Errorf("GetStorageType() = %v, want local", s.GetStorageType())
			}
		})
	}
}

func TestLocalStorage_Operations(t *testing.T) {
	baseURL := "http://localhost:8000"
	cfg := &config.StorageConfig{
		Type:  "local",
		Local: &config.LocalConfig{BasePath: t.TempDir(), BaseURL: baseURL},
	}

	ctx := context.Background()
	s, err := NewStorage(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	testKey := storage.UploadKey(time.UnixMilli(1700000000000), "notes.txt")
	testContent := "photosynthesis converts light into chemical energy"

	url, err := s.Upload(ctx, testKey, strings.NewReader(testContent), "text/plain")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if want := baseURL + "/uploads/1700000000000.txt"; url != want {
		t.Errorf("Upload() url = %v, want %v", url, want)
	}

	exists, err := s.Exists(ctx, testKey)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true", exists, err)
	}

	reader, err := s.Download(ctx, testKey)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	got, _ := io.ReadAll(reader)
	reader.Close()
	if string(got) != testContent {
		t.Errorf("Download() content = %v, want %v", string(got), testContent)
	}

	info, err := s.GetFileInfo(ctx, testKey)
	if err != nil {
		t.Fatalf("GetFileInfo() error = %v", err)
	}
	if info.Size != int64(len(testContent)) {
		t.Errorf("GetFileInfo() Size = %v, want %v", info.Size, len(testContent))
	}
	if !strings.HasPrefix(info.ContentType, "text/plain") {
		t.Errorf("GetFileInfo() ContentType = %v, want text/plain", info.ContentType)
	}

	if err := s.Delete(ctx, testKey); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	exists, _ = s.Exists(ctx, testKey)
	if exists {
		t.Errorf("Exists() = true after delete")
	}

	// 删除不存在的文件视为成功
	if err := s.Delete(ctx, testKey); err != nil {
		t.Errorf("Delete() non-existent error = %v", err)
	}
}

func TestLocalStorage_NotFoundAndTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(ctx, &config.StorageConfig{
		Type:  "local",
		Local: &config.LocalConfig{BasePath: t.TempDir()},
	})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if _, err := s.Download(ctx, "uploads/missing.png"); err == nil {
		t.Errorf("Download() expected error for non-existent file")
	} else if !strings.Contains(err.Error(), storage.ErrNotFound.Error()) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}

	if _, err := s.Download(ctx, "../../etc/passwd"); err == nil {
		t.Errorf("Download() expected error for traversal key")
	}
}
