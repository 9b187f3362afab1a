package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"revizly/internal/client/inference"
	"revizly/internal/client/persistence"
	"revizly/internal/orchestrator"
)

// clientTimeout 单次 HTTP 调用超时
func clientTimeout() time.Duration {
	if cfg.Client.Timeout > 0 {
		return cfg.Client.Timeout
	}
	return 60 * time.Second
}

// newPersistence 创建持久化客户端
func newPersistence() *persistence.Client {
	return persistence.New(cfg.Client.PersistenceURL, cfg.Client.Token, clientTimeout())
}

// newOrchestrator 创建编排器，要求已配置 token
func newOrchestrator(opts ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	if err := cfg.Client.ValidateClient(); err != nil {
		return nil, err
	}
	if cfg.Client.Token == "" {
		return nil, fmt.Errorf("not logged in: run `revizly login` and set REVIZLY_CLIENT_TOKEN")
	}
	return orchestrator.New(
		newPersistence(),
		inference.New(cfg.Client.InferenceURL, clientTimeout()),
		opts...,
	), nil
}

// location 对话分组使用的时区
func location() *time.Location {
	if cfg.Client.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(cfg.Client.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// readAttachment 读取本地文件作为附件
func readAttachment(path string) (*orchestrator.Attachment, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return &orchestrator.Attachment{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

// withTimeout 为整个命令设置上限
func withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*clientTimeout())
}
