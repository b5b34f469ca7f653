package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootFlags struct {
	configPath string

	from, to  string
	skipProbe bool

	workers         uint64
	maxQueueSize    uint64
	maxDepth        uint64
	maxRetries      uint64
	shutdownTimeout time.Duration

	timeout     time.Duration
	rate        float64
	cache       string
	redisAddr   string
	cacheTTL    time.Duration
	kafkaBroker string
	kafkaTopic  string
}

var rootCmd = &cobra.Command{
	Use:   "wikiPathfinder [from] [to]",
	Short: "Find the shortest chain of links between two Wikipedia articles",
	Long: "wikiPathfinder searches the Wikipedia link graph breadth first, level by level,\n" +
		"with a pool of concurrent fetchers, and prints the shortest chain of article\n" +
		"links that leads from one page to the other.",
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSearch,
}

func init() {
	defaults := defaultConfig()

	f := rootCmd.Flags()
	f.StringVarP(&rootFlags.configPath, "config", "c", "", "YAML config file; flags override its values")
	f.StringVar(&rootFlags.from, "from", defaults.From, "Article to start from")
	f.StringVar(&rootFlags.to, "to", defaults.To, "Article to reach")
	f.BoolVar(&rootFlags.skipProbe, "skip-probe", defaults.SkipProbe, "Do not check that both articles exist before searching")
	f.Uint64VarP(&rootFlags.workers, "workers", "w", defaults.Scheduler.Workers, "Number of concurrent fetchers (1-100)")
	f.Uint64Var(&rootFlags.maxQueueSize, "max-queue", defaults.Scheduler.MaxQueueSize, "Abort once more pages than this are queued (0 disables)")
	f.Uint64Var(&rootFlags.maxDepth, "max-depth", defaults.Scheduler.MaxDepth, "Longest path in hops worth searching for (0 disables)")
	f.Uint64Var(&rootFlags.maxRetries, "max-retries", defaults.Scheduler.MaxRetries, "Retries of a failing page before it is skipped")
	f.DurationVar(&rootFlags.shutdownTimeout, "shutdown-timeout", defaults.Scheduler.ShutdownTimeout, "How long a finished search waits for its fetchers to stop")
	f.DurationVar(&rootFlags.timeout, "timeout", defaults.Fetcher.Timeout, "Timeout of a single page fetch")
	f.Float64Var(&rootFlags.rate, "rate", defaults.Fetcher.RequestsPerSecond, "Page fetches per second across all workers (0 disables)")
	f.StringVar(&rootFlags.cache, "cache", defaults.Cache.Backend, "Link cache backend: none, memory or redis")
	f.StringVar(&rootFlags.redisAddr, "redis-addr", defaults.Cache.RedisAddr, "Redis address of the link cache")
	f.DurationVar(&rootFlags.cacheTTL, "cache-ttl", defaults.Cache.TTL, "How long cached links stay valid")
	f.StringVar(&rootFlags.kafkaBroker, "kafka-broker", defaults.Telemetry.KafkaBroker, "Kafka broker to publish search telemetry to")
	f.StringVar(&rootFlags.kafkaTopic, "kafka-topic", defaults.Telemetry.KafkaTopic, "Kafka topic of search telemetry")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := defaultConfig()
	if rootFlags.configPath != "" {
		if err := loadConfig(rootFlags.configPath, &cfg); err != nil {
			return err
		}
	}
	applyFlags(cmd.Flags(), &cfg)
	if len(args) > 0 {
		cfg.From = args[0]
	}
	if len(args) > 1 {
		cfg.To = args[1]
	}

	ctx, cancel := listenForCancellationAndAddToContext()
	defer cancel()

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	_, err = app.Run(ctx)
	return err
}

// applyFlags copies the flags set on the command line over cfg.
func applyFlags(flags *pflag.FlagSet, cfg *AppConfig) {
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}

	set("from", func() { cfg.From = rootFlags.from })
	set("to", func() { cfg.To = rootFlags.to })
	set("skip-probe", func() { cfg.SkipProbe = rootFlags.skipProbe })
	set("workers", func() { cfg.Scheduler.Workers = rootFlags.workers })
	set("max-queue", func() { cfg.Scheduler.MaxQueueSize = rootFlags.maxQueueSize })
	set("max-depth", func() { cfg.Scheduler.MaxDepth = rootFlags.maxDepth })
	set("max-retries", func() { cfg.Scheduler.MaxRetries = rootFlags.maxRetries })
	set("shutdown-timeout", func() { cfg.Scheduler.ShutdownTimeout = rootFlags.shutdownTimeout })
	set("timeout", func() { cfg.Fetcher.Timeout = rootFlags.timeout })
	set("rate", func() { cfg.Fetcher.RequestsPerSecond = rootFlags.rate })
	set("cache", func() { cfg.Cache.Backend = rootFlags.cache })
	set("redis-addr", func() { cfg.Cache.RedisAddr = rootFlags.redisAddr })
	set("cache-ttl", func() { cfg.Cache.TTL = rootFlags.cacheTTL })
	set("kafka-broker", func() { cfg.Telemetry.KafkaBroker = rootFlags.kafkaBroker })
	set("kafka-topic", func() { cfg.Telemetry.KafkaTopic = rootFlags.kafkaTopic })
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
