// Command collector scrapes BirdCast migration dashboards and appends each
// observation to the CSV and JSON history files.
//
// Usage:
//
//	collector run        # one batch over the target list, then exit
//	collector schedule   # run daily at SCHEDULE_AT with health endpoints
//
// Configuration is environment-driven (see internal/config); a .env file in
// the working directory is honored.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/davidjcox/birdcast-collector/internal/adapter/birdcast"
	httpadapter "github.com/davidjcox/birdcast-collector/internal/adapter/http"
	kafkaadapter "github.com/davidjcox/birdcast-collector/internal/adapter/kafka"
	"github.com/davidjcox/birdcast-collector/internal/adapter/store"
	"github.com/davidjcox/birdcast-collector/internal/config"
	"github.com/davidjcox/birdcast-collector/internal/domain"
	"github.com/davidjcox/birdcast-collector/internal/observability"
	"github.com/davidjcox/birdcast-collector/internal/pipeline"
	"github.com/davidjcox/birdcast-collector/internal/scheduler"
	"github.com/davidjcox/birdcast-collector/internal/targets"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "collector",
		Short:         "BirdCast migration data collector",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newScheduleCmd())

	if err := root.Execute(); err != nil {
		slog.Error("collector failed", "error", err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scrape every target once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			metrics := observability.NewMetrics()

			runner, cleanup, err := buildRunner(cfg, logger, metrics)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := loadTargets(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary := runner.Run(ctx, list)
			printSummary(summary, cfg)

			if summary.Attempted > 0 && summary.Succeeded == 0 {
				return errors.New("no data was collected, check the logs for details")
			}
			return nil
		},
	}
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run daily at the configured local time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			metrics := observability.NewMetrics()

			runner, cleanup, err := buildRunner(cfg, logger, metrics)
			if err != nil {
				return err
			}
			defer cleanup()

			sched, err := scheduler.New(clockwork.NewRealClock(), cfg.ScheduleAt, logger)
			if err != nil {
				return err
			}

			srv := httpadapter.NewServer(cfg.HTTPAddr, runner, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server error", "error", err)
				}
			}()

			err = sched.Run(ctx, func(jobCtx context.Context) {
				// The target list is reloaded per firing so corridor list
				// updates are picked up without a restart.
				list, err := loadTargets(cfg)
				if err != nil {
					logger.Error("failed to load target list", "error", err)
					return
				}
				runner.Run(jobCtx, list)
			})

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				logger.Error("http server shutdown error", "error", serr)
			}
			return err
		},
	}
}

// buildRunner wires the fetcher, appender, and optional publisher into a
// batch runner. The returned cleanup closes the Kafka producer, if any.
func buildRunner(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Runner, func(), error) {
	client := birdcast.NewClient(birdcast.Options{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.FetchTimeout,
		Retries:      cfg.FetchRetries,
		RetryWait:    cfg.RetryWait,
		RetryMaxWait: cfg.RetryMaxWait,
	}, logger)

	appender, err := store.NewAppender(cfg.CSVPath, cfg.JSONPath, logger)
	if err != nil {
		return nil, nil, err
	}

	var publisher pipeline.Publisher
	cleanup := func() {}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publisher = writer
		cleanup = func() {
			if cerr := writer.Close(); cerr != nil {
				logger.Error("kafka writer close error", "error", cerr)
			}
		}
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	runner := pipeline.New(client, appender, publisher, logger, metrics, clockwork.NewRealClock(), cfg.RequestDelay)
	return runner, cleanup, nil
}

func loadTargets(cfg *config.Config) ([]domain.Target, error) {
	if cfg.TargetsCSV != "" {
		return targets.LoadCSV(cfg.TargetsCSV)
	}
	return targets.Defaults(), nil
}

func printSummary(s domain.RunSummary, cfg *config.Config) {
	if s.Succeeded > 0 {
		fmt.Println("BirdCast Data Collector - SUCCESS")
	} else {
		fmt.Println("BirdCast Data Collector - FAILED")
	}
	fmt.Printf("  attempted: %d\n  succeeded: %d\n  failed:    %d\n  duration:  %s\n",
		s.Attempted, s.Succeeded, s.Failed, s.Duration.Round(time.Millisecond))
	fmt.Printf("  data: %s, %s\n", cfg.CSVPath, cfg.JSONPath)
}
