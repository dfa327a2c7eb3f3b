package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg，环境变量 INSTACAP_* 可覆盖
func LoadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("INSTACAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

// Default 返回仅包含默认值的配置，测试与缺省启动使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "production")
	v.SetDefault("server.max_upload_size", 5<<20)
	v.SetDefault("server.allowed_file_types", []string{"image/jpeg", "image/png", "image/webp"})

	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "instacap")
	v.SetDefault("mongo.connect_timeout", 10)

	v.SetDefault("redis.enable", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("llm.vision_model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.8)
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.max_image_side", 1024)
	v.SetDefault("llm.caption_prompt", "./prompts/caption.txt")

	v.SetDefault("identity.provider", "firebase")
	v.SetDefault("identity.jwt.issuer", "InstaCap")
	v.SetDefault("identity.jwt.expire_hours", 24)

	v.SetDefault("minio.bucket", "instacap")

	v.SetDefault("rate_limit.enable", true)
	v.SetDefault("rate_limit.window_seconds", 900)
	v.SetDefault("rate_limit.max", 100)

	v.SetDefault("logstash.index", "logstash-instacap")
	v.SetDefault("logstash.level", "info")

	v.SetDefault("generation.min_count", 3)
	v.SetDefault("generation.max_count", 6)
	v.SetDefault("generation.default_count", 3)
	v.SetDefault("generation.enhance_timeout", 8)

	v.SetDefault("trending.window_days", 7)
	v.SetDefault("trending.default_limit", 20)
	v.SetDefault("trending.max_limit", 50)
	v.SetDefault("trending.cache_ttl_seconds", 300)

	v.SetDefault("cron.enable", true)
	v.SetDefault("cron.trending_snapshot", "@every 30m")
	v.SetDefault("cron.monthly_reset", "0 5 0 1 * *")
}
