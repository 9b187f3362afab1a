package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"revizly/internal/ai"
	"revizly/internal/config"
	"revizly/internal/handler"
	"revizly/internal/pkg/metrics"
	"revizly/internal/server/middleware"
)

// inferenceMaxUpload 推理服务接受的附件上限
const inferenceMaxUpload = 20 << 20

// InferenceServer 推理服务，无需认证
type InferenceServer struct {
	cfg    *config.Config
	engine *gin.Engine
}

// NewInference 创建推理服务实例
func NewInference(ctx context.Context, cfg *config.Config) (*InferenceServer, error) {
	client, err := ai.NewClient(ctx, &cfg.AI)
	if err != nil {
		return nil, err
	}
	if client.IsMock() {
		log.Warn().Msg("AI api_key not configured, using mock generator")
	} else {
		log.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("initialized chat model")
	}
	return NewInferenceWithGenerator(cfg, client), nil
}

// NewInferenceWithGenerator 使用指定生成器创建推理服务 (用于测试)
func NewInferenceWithGenerator(cfg *config.Config, generator handler.Generator) *InferenceServer {
	setGinMode(cfg.Server.Mode)

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.Metrics())
	engine.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := handler.NewHealthHandler(nil)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/metrics", metrics.Handler())

	engine.POST("/generate", handler.NewGenerateHandler(generator, inferenceMaxUpload).Generate)

	return &InferenceServer{cfg: cfg, engine: engine}
}

// Run 启动推理服务，ctx 取消后优雅关闭
func (s *InferenceServer) Run(ctx context.Context, addr string) error {
	return serve(ctx, &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Inference.ReadTimeout,
		WriteTimeout: s.cfg.Inference.WriteTimeout,
	})
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *InferenceServer) Engine() *gin.Engine {
	return s.engine
}
