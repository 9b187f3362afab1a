package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "revizly/docs"
	"revizly/internal/config"
	"revizly/internal/handler"
	attachmentHandler "revizly/internal/handler/attachment"
	authHandler "revizly/internal/handler/auth"
	conversationHandler "revizly/internal/handler/conversation"
	messageHandler "revizly/internal/handler/message"
	"revizly/internal/pkg/cache"
	"revizly/internal/pkg/metrics"
	"revizly/internal/pkg/mongodb"
	"revizly/internal/pkg/storagefactory"
	"revizly/internal/repository"
	authRepo "revizly/internal/repository/auth"
	"revizly/internal/server/middleware"
	"revizly/internal/service"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

// Server 持久化与认证服务
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// setGinMode 设置 Gin 模式
func setGinMode(mode string) {
	switch mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}

// New 创建服务器实例，MongoDB 为必需依赖，Redis 可选
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	setGinMode(cfg.Server.Mode)

	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
		mongo:  mongoClient,
		redis:  redisCache,
	}

	if err := srv.setupRoutes(ctx); err != nil {
		_ = mongoClient.Close(context.Background())
		return nil, err
	}

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(ctx context.Context) error {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.Metrics())
	s.engine.Use(middleware.CORS(s.cfg.Server.CORSOrigins))

	deps := map[string]handler.Pinger{"mongo": s.mongo}
	if s.redis != nil {
		deps["redis"] = s.redis
	}
	healthHandler := handler.NewHealthHandler(deps)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)
	s.engine.GET("/metrics", metrics.Handler())
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	store, err := storagefactory.NewStorage(ctx, &s.cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db := s.mongo.Database()
	var listCache cache.Cache = cache.Nop{}
	if s.redis != nil {
		listCache = s.redis
	}

	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = defaultJWTSecret
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}
	accessTokenExpiry := s.cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = time.Hour
	}

	authSvc := service.NewAuthService(authRepo.NewUserRepo(db), jwtSecret, accessTokenExpiry)
	attachmentSvc := service.NewAttachmentService(repository.NewAttachmentRepo(db), store)
	conversationSvc := service.NewConversationService(
		repository.NewConversationRepo(db),
		repository.NewMessageRepo(db),
		attachmentSvc,
		listCache,
		s.mongo,
		s.cfg.Auth.EnforceOwnership,
	)
	messageSvc := service.NewMessageService(repository.NewMessageRepo(db), conversationSvc, attachmentSvc)

	maxUpload := s.cfg.Server.MaxUploadMB << 20

	authHdl := authHandler.NewHandler(authSvc)
	convHdl := conversationHandler.NewHandler(conversationSvc)
	msgHdl := messageHandler.NewHandler(messageSvc, maxUpload)
	attHdl := attachmentHandler.NewHandler(attachmentSvc)

	s.engine.POST("/signup", authHdl.Signup)
	s.engine.POST("/login", authHdl.Login)
	s.engine.GET("/uploads/*key", attHdl.Download)

	authed := s.engine.Group("")
	authed.Use(middleware.Auth(authSvc))
	{
		authed.GET("/me", authHdl.GetMe)

		authed.POST("/conversations", convHdl.CreateConversation)
		authed.GET("/conversations", convHdl.ListConversations)
		authed.PUT("/conversations/:id", convHdl.RenameConversation)
		authed.DELETE("/conversations/:id", convHdl.DeleteConversation)
		authed.GET("/conversations/:id/messages", convHdl.ListMessages)
		authed.DELETE("/conversations/:id/messages", convHdl.DeleteMessages)

		authed.POST("/messages", msgHdl.CreateMessage)
	}

	log.Info().
		Str("storage", store.GetStorageType()).
		Bool("enforce_ownership", s.cfg.Auth.EnforceOwnership).
		Bool("transactions", s.cfg.Mongo.Transactions).
		Msg("routes registered")
	return nil
}

// Run 启动服务器，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	err := serve(ctx, srv)

	if err := s.mongo.Close(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to close MongoDB connection")
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis connection")
		}
	}
	return err
}

// serve 监听并在 ctx 取消时关闭
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Str("addr", srv.Addr).Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
