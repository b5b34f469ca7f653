package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"wikiPathfinder/domain/adapters/urlFetcherExtractor"
)

const (
	cacheNone   = "none"
	cacheMemory = "memory"
	cacheRedis  = "redis"
)

type AppConfig struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	SkipProbe bool   `yaml:"skip_probe"`

	ProgressInterval time.Duration `yaml:"progress_interval"`

	Scheduler SchedulerConfig `yaml:"scheduler"`
	Fetcher   FetcherConfig   `yaml:"fetcher"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Set by tests, built from the fields above when nil.
	Logger     Logger         `yaml:"-"`
	LinkSource LinkSource     `yaml:"-"`
	Prober     Prober         `yaml:"-"`
	Publisher  EventPublisher `yaml:"-"`
}

type SchedulerConfig struct {
	Workers         uint64        `yaml:"workers"`
	MaxQueueSize    uint64        `yaml:"max_queue_size"`
	MaxDepth        uint64        `yaml:"max_depth"`
	MaxRetries      uint64        `yaml:"max_retries"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type FetcherConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	ArticlePrefix     string        `yaml:"article_prefix"`
	UserAgent         string        `yaml:"user_agent"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"` // none, memory or redis
	RedisAddr string        `yaml:"redis_addr"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

type TelemetryConfig struct {
	KafkaBroker string `yaml:"kafka_broker"`
	KafkaTopic  string `yaml:"kafka_topic"`
}

func defaultConfig() AppConfig {
	return AppConfig{
		From:             "https://en.wikipedia.org/wiki/It_Is_the_Law",
		To:               "https://en.wikipedia.org/wiki/Dab_(dance)",
		ProgressInterval: time.Second,
		Scheduler: SchedulerConfig{
			Workers:         1,
			MaxRetries:      2,
			ShutdownTimeout: 10 * time.Second,
		},
		Fetcher: FetcherConfig{
			Timeout:       30 * time.Second,
			ArticlePrefix: urlFetcherExtractor.DefaultArticlePrefix,
			UserAgent:     urlFetcherExtractor.DefaultUserAgent,
		},
		Cache: CacheConfig{
			Backend:   cacheNone,
			RedisAddr: "localhost:6379",
			Prefix:    "wikiPathfinder:links:",
			TTL:       24 * time.Hour,
		},
		Telemetry: TelemetryConfig{
			KafkaTopic: "wikiPathfinder.search.telemetry",
		},
	}
}

// loadConfig reads a YAML file over cfg; keys missing from the file keep their value.
func loadConfig(path string, cfg *AppConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c AppConfig) validate() error {
	if c.From == "" || c.To == "" {
		return fmt.Errorf("config: both from and to pages are required")
	}
	switch c.Cache.Backend {
	case cacheNone, cacheMemory, cacheRedis:
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
