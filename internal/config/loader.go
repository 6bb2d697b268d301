package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/showcase/internal/domain/model"
)

const (
	envPrefix     = "SHOWCASE_"
	envConfigFile = "SHOWCASE_CONFIG"
)

// listKeys are read from env as comma separated lists.
var listKeys = map[string]struct{}{
	"categories":    {},
	"kafka_brokers": {},
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SHOWCASE_CONFIG is set
//  3. env (prefix SHOWCASE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SHOWCASE_NOTIFY_QUEUE_SIZE -> notify_queue_size (flat keys, underscores kept).
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.MinScore >= c.MaxScore:
		return invalid("min_score (%g) must be below max_score (%g)", c.MinScore, c.MaxScore)
	case c.LikeWeight < 0 || c.JudgeWeight < 0:
		return invalid("weights must not be negative")
	case c.LikeWeight == 0 && c.JudgeWeight == 0:
		return invalid("like_weight and judge_weight must not both be zero")
	case c.TopN <= 0:
		return invalid("top_n must be positive")
	case c.TopPostsLimit <= 0:
		return invalid("top_posts_limit must be positive")
	case len(c.Categories) == 0:
		return invalid("categories must not be empty")
	}

	for _, name := range c.Categories {
		if _, err := model.ParseCategory(name); err != nil {
			return invalid("unknown category %q", name)
		}
	}

	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return invalid("database_url is required for the postgres store")
		}
	default:
		return invalid("unknown store %q", c.Store)
	}

	switch c.Notifier {
	case NotifierLog, NotifierNone:
	case NotifierRedis:
		if c.RedisURL == "" {
			return invalid("redis_url is required for the redis notifier")
		}
	case NotifierKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return invalid("kafka_brokers and kafka_topic are required for the kafka notifier")
		}
	default:
		return invalid("unknown notifier %q", c.Notifier)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
