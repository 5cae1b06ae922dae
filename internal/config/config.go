package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/Skufu/hepatostage/internal/model"
)

type Config struct {
	Port         string
	GinMode      string
	EnableDB     bool
	DatabaseURL  string
	ModelPath    string
	PreloadModel bool
	LogLevel     string
	LogFormat    string
	CacheSize    int
	RateLimitRPS float64
	RateBurst    int
	MaxBodyBytes int64
}

// Load reads .env (if present), an optional YAML file named by CONFIG_FILE,
// then environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	bindEnv(v)

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Port:         v.GetString("port"),
		GinMode:      v.GetString("gin_mode"),
		EnableDB:     v.GetBool("enable_db"),
		DatabaseURL:  v.GetString("database_url"),
		ModelPath:    v.GetString("model_path"),
		PreloadModel: v.GetBool("preload_model"),
		LogLevel:     strings.ToLower(v.GetString("log_level")),
		LogFormat:    strings.ToLower(v.GetString("log_format")),
		CacheSize:    v.GetInt("cache_size"),
		RateLimitRPS: v.GetFloat64("rate_limit_rps"),
		RateBurst:    v.GetInt("rate_limit_burst"),
		MaxBodyBytes: v.GetInt64("max_body_bytes"),
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = model.DefaultPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("enable_db", false)
	v.SetDefault("database_url", "")
	v.SetDefault("model_path", "")
	v.SetDefault("preload_model", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("cache_size", 256)
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)
	v.SetDefault("max_body_bytes", 1<<20)
}

// bindEnv maps keys whose environment names differ from the key itself.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("config_file", "CONFIG_FILE")
	_ = v.BindEnv("cache_size", "PREDICTION_CACHE_SIZE")
}

func (c *Config) Validate() error {
	if c.EnableDB && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required when ENABLE_DB=true")
	}
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("PREDICTION_CACHE_SIZE must not be negative, got %d", c.CacheSize)
	}
	if c.RateLimitRPS < 0 || c.RateBurst < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateBurst == 0 {
		return errors.New("RATE_LIMIT_BURST must be positive when RATE_LIMIT_RPS is set")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}
