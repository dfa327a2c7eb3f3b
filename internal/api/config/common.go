package config

// Config 配置主体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Redis      RedisConfig      `mapstructure:"redis"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logstash   LogstashConfig   `mapstructure:"logstash"`
	Generation GenerationConfig `mapstructure:"generation"`
	Trending   TrendingConfig   `mapstructure:"trending"`
	Cron       CronConfig       `mapstructure:"cron"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port             int      `mapstructure:"port"`
	Mode             string   `mapstructure:"mode"`
	MaxUploadSize    int64    `mapstructure:"max_upload_size"`
	AllowedFileTypes []string `mapstructure:"allowed_file_types"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
}

// IsDevelopment 开发模式下错误响应携带 detail
func (s ServerConfig) IsDevelopment() bool {
	return s.Mode == "development"
}

// MongoConfig 文档库配置
type MongoConfig struct {
	URL            string `mapstructure:"url"`
	Database       string `mapstructure:"database"`
	ConnectTimeout int    `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type LLMConfig struct {
	URL           string  `mapstructure:"url"`
	ApiKey        string  `mapstructure:"api_key"`
	VisionModel   string  `mapstructure:"vision_model"`
	Temperature   float64 `mapstructure:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	MaxImageSide  int     `mapstructure:"max_image_side"`
	CaptionPrompt string  `mapstructure:"caption_prompt"`
}

// Enabled 未配置 api_key 时不启用外部生成
func (c LLMConfig) Enabled() bool {
	return c.ApiKey != ""
}

// IdentityConfig 身份提供方配置
type IdentityConfig struct {
	Provider string         `mapstructure:"provider"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	JWT      JWTConfig      `mapstructure:"jwt"`
}

type FirebaseConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	WebAPIKey       string `mapstructure:"web_api_key"`
	CheckRevoked    bool   `mapstructure:"check_revoked"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Enable    bool   `mapstructure:"enable"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type RateLimitConfig struct {
	Enable        bool `mapstructure:"enable"`
	WindowSeconds int  `mapstructure:"window_seconds"`
	Max           int  `mapstructure:"max"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
	Level   string `mapstructure:"level"`
}

// GenerationConfig 文案生成配置
type GenerationConfig struct {
	MinCount       int `mapstructure:"min_count"`
	MaxCount       int `mapstructure:"max_count"`
	DefaultCount   int `mapstructure:"default_count"`
	EnhanceTimeout int `mapstructure:"enhance_timeout"`
}

type TrendingConfig struct {
	WindowDays      int `mapstructure:"window_days"`
	DefaultLimit    int `mapstructure:"default_limit"`
	MaxLimit        int `mapstructure:"max_limit"`
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

type CronConfig struct {
	Enable           bool   `mapstructure:"enable"`
	TrendingSnapshot string `mapstructure:"trending_snapshot"`
	MonthlyReset     string `mapstructure:"monthly_reset"`
}
