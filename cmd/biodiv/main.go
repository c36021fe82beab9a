// Command biodiv queries ChecklistBank and GBIF from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/biodiv-client/internal/config"
	"github.com/Sternrassler/biodiv-client/pkg/client"
	"github.com/Sternrassler/biodiv-client/pkg/logging"
	"github.com/Sternrassler/biodiv-client/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg    *config.Config
	client *client.Client
	redis  *redis.Client
	logger zerolog.Logger

	in  io.Reader
	out io.Writer

	stopMetrics context.CancelFunc
	metricsDone chan error
}

func newRootCmd(in io.Reader, out io.Writer) (*app, *cobra.Command) {
	a := &app{v: viper.New(), in: in, out: out}

	rootCmd := &cobra.Command{
		Use:           "biodiv",
		Short:         "Bulk queries against the ChecklistBank and GBIF APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "YAML config file; may also be specified in BIODIV_CONFIG")
	flags.Int("concurrency", 2, "maximum in-flight page requests")
	flags.String("redis", "", "Redis address for the lookup cache and shared cooldowns")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("log-pretty", false, "human-readable logs")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.String("user-agent", config.DefaultUserAgent, "User-Agent sent to the APIs")
	flags.String("checklistbank-url", client.DefaultChecklistBankURL, "ChecklistBank base URL")
	flags.String("gbif-url", client.DefaultGBIFURL, "GBIF base URL")

	for key, flag := range map[string]string{
		"concurrency":       "concurrency",
		"redis.addr":        "redis",
		"log.level":         "log-level",
		"log.pretty":        "log-pretty",
		"metrics_addr":      "metrics-addr",
		"user_agent":        "user-agent",
		"checklistbank_url": "checklistbank-url",
		"gbif_url":          "gbif-url",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(cmdDatasets(a))
	rootCmd.AddCommand(cmdKey(a))
	rootCmd.AddCommand(cmdMatch(a))
	rootCmd.AddCommand(cmdTaxa(a))
	rootCmd.AddCommand(cmdImages(a))
	rootCmd.AddCommand(cmdQuiz(a))

	return a, rootCmd
}

// execute runs rootCmd and releases a's resources, also when the command fails.
func execute(ctx context.Context, a *app, rootCmd *cobra.Command) (err error) {
	defer func() {
		err = errors.Join(err, a.close())
	}()
	return rootCmd.ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.cfgFile == "" {
		a.cfgFile = os.Getenv("BIODIV_CONFIG")
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Setup(logging.Config{Level: level, Pretty: cfg.Log.Pretty, Output: os.Stderr})
	a.logger = logging.NewLogger("cli")

	a.redis = cfg.RedisClient()
	if a.redis != nil {
		if err := a.redis.Ping(cmd.Context()).Err(); err != nil {
			a.logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable - continuing without cache")
			a.redis.Close()
			a.redis = nil
		}
	}

	a.client, err = client.New(cfg.ClientConfig(a.redis))
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopMetrics = cancel
		a.metricsDone = make(chan error, 1)
		go func() {
			a.metricsDone <- metrics.Serve(ctx, cfg.MetricsAddr, a.logger)
		}()
	}

	return nil
}

func (a *app) close() error {
	var errs []error

	if a.stopMetrics != nil {
		a.stopMetrics()
		errs = append(errs, <-a.metricsDone)
		a.stopMetrics = nil
	}
	if a.client != nil {
		errs = append(errs, a.client.Close())
		a.client = nil
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
		a.redis = nil
	}

	return errors.Join(errs...)
}

func main() {
	// Optionally load environment variables from a .env file.
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, rootCmd := newRootCmd(os.Stdin, os.Stdout)
	if err := execute(ctx, a, rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
