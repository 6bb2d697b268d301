// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and SHOWCASE_* environment variables over them.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"runtime"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Notifier backends.
const (
	NotifierLog   = "log"
	NotifierRedis = "redis"
	NotifierKafka = "kafka"
	NotifierNone  = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RequestTimeoutMS bounds the handling time of a single HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// Store selects the persistence backend: memory or postgres.
	Store string `koanf:"store"`

	// DatabaseURL is the postgres DSN used when Store is postgres.
	DatabaseURL string `koanf:"database_url"`

	// DBMaxConns caps the postgres connection pool.
	DBMaxConns int `koanf:"db_max_conns"`

	// SeedFile optionally points at a YAML fixture of posts loaded at start.
	SeedFile string `koanf:"seed_file"`

	// Notifier selects where judge notifications go: log, redis, kafka or none.
	Notifier string `koanf:"notifier"`

	RedisURL           string `koanf:"redis_url"`
	RedisChannelPrefix string `koanf:"redis_channel_prefix"`

	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`

	// NotifyQueueSize bounds the in-memory notification queue.
	NotifyQueueSize int `koanf:"notify_queue_size"`

	// NotifyWorkers sets the number of notification delivery workers.
	NotifyWorkers int `koanf:"notify_workers"`

	// DedupeSize sets the size of the notification deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// JWTSecret signs bearer tokens; JWTPreviousSecret is accepted during rotation.
	JWTSecret         string `koanf:"jwt_secret"`
	JWTPreviousSecret string `koanf:"jwt_previous_secret"`

	// MinScore and MaxScore bound judge scores (inclusive).
	MinScore float64 `koanf:"min_score"`
	MaxScore float64 `koanf:"max_score"`

	// LikeWeight and JudgeWeight are the blend weights of the final score.
	LikeWeight  float64 `koanf:"like_weight"`
	JudgeWeight float64 `koanf:"judge_weight"`

	// TopN is the per-category leaderboard length.
	TopN int `koanf:"top_n"`

	// TopPostsLimit caps GET /judge/top-posts.
	TopPostsLimit int `koanf:"top_posts_limit"`

	// EvaluationsPageLimit is the default page size of GET /judge/evaluations,
	// EvaluationsMaxPageLimit its hard cap.
	EvaluationsPageLimit    int `koanf:"evaluations_page_limit"`
	EvaluationsMaxPageLimit int `koanf:"evaluations_max_page_limit"`

	// Categories lists the ranked categories in output order.
	Categories []string `koanf:"categories"`

	// JudgeCategoryScope restricts category judges to posts of their category.
	JudgeCategoryScope bool `koanf:"judge_category_scope"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		RequestTimeoutMS:        5_000,
		Store:                   StoreMemory,
		DBMaxConns:              10,
		Notifier:                NotifierLog,
		RedisChannelPrefix:      "notifications",
		KafkaTopic:              "showcase.notifications",
		NotifyQueueSize:         10_000,
		NotifyWorkers:           runtime.NumCPU(),
		DedupeSize:              100_000,
		MinScore:                0,
		MaxScore:                10,
		LikeWeight:              40,
		JudgeWeight:             60,
		TopN:                    10,
		TopPostsLimit:           10,
		EvaluationsPageLimit:    100,
		EvaluationsMaxPageLimit: 500,
		Categories:              []string{"literal", "visual", "vocal"},
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
