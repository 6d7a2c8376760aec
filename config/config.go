package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Feed      FeedConfig      `mapstructure:"feed"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Trace     TraceConfig     `mapstructure:"trace"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug | release
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // postgres | sqlite
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// FeedConfig 信息流打分参数
type FeedConfig struct {
	AffinityBonus        float64 `mapstructure:"affinity_bonus"`
	PopularityBonus      float64 `mapstructure:"popularity_bonus"`
	FreshnessBonus       float64 `mapstructure:"freshness_bonus"`
	FreshnessWindowHours int     `mapstructure:"freshness_window_hours"`
	PopularityThreshold  float64 `mapstructure:"popularity_threshold"`
	UseDecayedEngagement bool    `mapstructure:"use_decayed_engagement"`
	EngagementThreshold  float64 `mapstructure:"engagement_threshold"`
	DecayBase            float64 `mapstructure:"decay_base"`
	DecayExponent        float64 `mapstructure:"decay_exponent"`
	JitterEnabled        bool    `mapstructure:"jitter_enabled"`
	DefaultPageSize      int     `mapstructure:"default_page_size"`
	MaxPageSize          int     `mapstructure:"max_page_size"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TraceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Service  string `mapstructure:"service"`
}

type ReconcileConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Load 读取 config.yaml 并叠加环境变量（APP_SERVER_PORT 等）
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 允许无配置文件，全部走默认值 + 环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file::memory:?cache=shared")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("jwt.secret", "dev-secret-change-me")
	v.SetDefault("jwt.expire_hours", 72)

	v.SetDefault("feed.affinity_bonus", 4)
	v.SetDefault("feed.popularity_bonus", 3)
	v.SetDefault("feed.freshness_bonus", 2)
	v.SetDefault("feed.freshness_window_hours", 24)
	v.SetDefault("feed.popularity_threshold", 100)
	v.SetDefault("feed.use_decayed_engagement", true)
	v.SetDefault("feed.engagement_threshold", 10)
	v.SetDefault("feed.decay_base", 2)
	v.SetDefault("feed.decay_exponent", 1.5)
	v.SetDefault("feed.jitter_enabled", true)
	v.SetDefault("feed.default_page_size", 10)
	v.SetDefault("feed.max_page_size", 100)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.endpoint", "localhost:4318")
	v.SetDefault("trace.service", "social-feed")

	v.SetDefault("reconcile.enabled", false)
	v.SetDefault("reconcile.cron", "@hourly")
}
