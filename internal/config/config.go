package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Inference InferenceConfig `mapstructure:"inference"`
	AI        AIConfig        `mapstructure:"ai"`
	Log       LogConfig       `mapstructure:"log"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Client    ClientConfig    `mapstructure:"client"`
}

// ServerConfig 持久化服务 HTTP 配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
	CORSOrigins  []string      `mapstructure:"cors_origins"` // 为空时允许所有来源
}

// InferenceConfig 推理服务 HTTP 配置
type InferenceConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig AI 服务配置
type AIConfig struct {
	Provider      string          `mapstructure:"provider"` // openai/azure/ark/mock
	APIKey        string          `mapstructure:"api_key"`
	Model         string          `mapstructure:"model"`
	BaseURL       string          `mapstructure:"base_url"`
	MaxInputRunes int             `mapstructure:"max_input_runes"` // 送入模型的最大字符数
	Options       AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI          string `mapstructure:"uri"`
	Database     string `mapstructure:"database"`
	MaxPoolSize  uint64 `mapstructure:"max_pool_size"`
	MinPoolSize  uint64 `mapstructure:"min_pool_size"`
	Transactions bool   `mapstructure:"transactions"` // 级联删除是否使用多文档事务（需要副本集）
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`          // JWT密钥
	AccessTokenExpiry time.Duration `mapstructure:"access_token_expiry"` // Access Token过期时间
	EnforceOwnership  bool          `mapstructure:"enforce_ownership"`   // 重命名/删除时校验对话归属
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 基础路径
	BaseURL  string `mapstructure:"base_url"`  // 基础URL（用于生成访问URL）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
	PresignExpiry   int    `mapstructure:"presign_expiry"`    // 预签名URL过期时间（秒）
}

// ClientConfig 编排客户端配置
type ClientConfig struct {
	PersistenceURL string        `mapstructure:"persistence_url"`
	InferenceURL   string        `mapstructure:"inference_url"`
	Token          string        `mapstructure:"token"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Timezone       string        `mapstructure:"timezone"` // 对话按天分组使用的时区，空则使用本地时区
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}
	if c.Inference.Port <= 0 || c.Inference.Port > 65535 {
		return errors.New("invalid inference port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Storage.Type != "" && c.Storage.Type != "local" && c.Storage.Type != "oss" {
		return errors.New("invalid storage type, must be local/oss")
	}

	return nil
}

// ValidateClient 验证客户端配置
func (c *ClientConfig) ValidateClient() error {
	if c.PersistenceURL == "" {
		return errors.New("client.persistence_url is required")
	}
	if c.InferenceURL == "" {
		return errors.New("client.inference_url is required")
	}
	return nil
}
