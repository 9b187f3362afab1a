package component

import (
	"context"
	"errors"
	"fmt"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"revizly/internal/config"
)

// ErrMissingAPIKey 未配置模型密钥
var ErrMissingAPIKey = errors.New("ai.api_key is required for provider")

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultArkModel    = "doubao-seed-1-6-flash-250615"
	defaultArkBaseURL  = "https://ark.cn-beijing.volces.com/api/v3"
)

// NewChatModel 创建 ChatModel
// 支持 openai / azure / ark
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w %q", ErrMissingAPIKey, cfg.Provider)
	}

	switch cfg.Provider {
	case "openai", "":
		return newOpenAIChatModel(ctx, cfg, false)
	case "azure":
		return newOpenAIChatModel(ctx, cfg, true)
	case "ark":
		return newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// sampling 将配置中的采样参数转换为模型所需的指针形式，零值表示使用模型默认值
func sampling(opts config.AIOptionsConfig) (temperature *float32, maxTokens *int, topP *float32) {
	if opts.Temperature > 0 {
		t := float32(opts.Temperature)
		temperature = &t
	}
	if opts.MaxTokens > 0 {
		m := opts.MaxTokens
		maxTokens = &m
	}
	if opts.TopP > 0 {
		p := float32(opts.TopP)
		topP = &p
	}
	return
}

// newOpenAIChatModel 创建 OpenAI / Azure OpenAI ChatModel
func newOpenAIChatModel(ctx context.Context, cfg *config.AIConfig, byAzure bool) (model.ChatModel, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	modelCfg := &openai.ChatModelConfig{
		Model:   modelName,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		ByAzure: byAzure,
	}
	modelCfg.Temperature, modelCfg.MaxTokens, modelCfg.TopP = sampling(cfg.Options)

	return openai.NewChatModel(ctx, modelCfg)
}

// newArkChatModel 创建 Ark ChatModel
func newArkChatModel(ctx context.Context, cfg *config.AIConfig) (model.ChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultArkBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultArkModel
	}

	modelCfg := &arkext.ChatModelConfig{
		Model:   modelName,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}
	modelCfg.Temperature, modelCfg.MaxTokens, modelCfg.TopP = sampling(cfg.Options)

	return arkext.NewChatModel(ctx, modelCfg)
}
