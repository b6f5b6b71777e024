// Command converter rewrites a concatenated-pinyin source dictionary into a
// Rime dictionary whose entries carry space-separated syllables.
//
// Flags:
//
//	--config   path to YAML config file (default: $CONFIG_PATH or ./converter.yaml)
//	--input    source dictionary (.gz, .zst and .lz4 are decompressed)
//	--output   Rime dictionary to write
//	--mode     exact or greedy
//	--workers  concurrent segmentation workers
//	--dry-run  segment without writing output or sinks
//	--migrate  apply database migrations before converting
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/pinyin-dict/internal/adapter/kafka"
	"github.com/heartmarshall/pinyin-dict/internal/adapter/postgres"
	"github.com/heartmarshall/pinyin-dict/internal/adapter/postgres/syllabification"
	"github.com/heartmarshall/pinyin-dict/internal/app"
	"github.com/heartmarshall/pinyin-dict/internal/app/converter"
	"github.com/heartmarshall/pinyin-dict/internal/config"
)

// Compile-time interface assertions.
var (
	_ converter.Sink = (*syllabification.Repo)(nil)
	_ converter.Sink = (*kafka.Publisher)(nil)
)

func main() {
	configFlag := flag.String("config", "", "path to YAML config file")
	inputFlag := flag.String("input", "", "source dictionary path")
	outputFlag := flag.String("output", "", "output Rime dictionary path")
	modeFlag := flag.String("mode", "", "segmentation mode: exact or greedy")
	workersFlag := flag.Int("workers", 0, "concurrent segmentation workers")
	dryRunFlag := flag.Bool("dry-run", false, "segment without writing output or sinks")
	migrateFlag := flag.Bool("migrate", false, "apply database migrations before converting")
	flag.Parse()

	// A missing .env is fine; the environment and YAML still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// CLI flags override config.
	if *inputFlag != "" {
		cfg.Converter.InputPath = *inputFlag
	}
	if *outputFlag != "" {
		cfg.Converter.OutputPath = *outputFlag
	}
	if *modeFlag != "" {
		cfg.Converter.Mode = *modeFlag
	}
	if *workersFlag > 0 {
		cfg.Converter.Workers = *workersFlag
	}
	if *dryRunFlag {
		cfg.Converter.DryRun = true
	}
	if *migrateFlag {
		cfg.Database.Migrate = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("converter starting", slog.String("version", app.BuildVersion()))

	// 30-minute context timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	code := run(ctx, logger, cfg)
	cancel()

	os.Exit(code)
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) int {
	var (
		sinks []converter.Sink
		repo  *syllabification.Repo
	)

	if cfg.Database.Enabled() && !cfg.Converter.DryRun {
		if cfg.Database.Migrate {
			applied, err := postgres.Migrate(ctx, cfg.Database.DSN)
			if err != nil {
				logger.Error("apply migrations", slog.String("error", err.Error()))
				return 1
			}
			logger.Info("migrations applied", slog.Int("count", applied))
		}

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Error("connect to database", slog.String("error", err.Error()))
			return 1
		}
		defer pool.Close()

		repo = syllabification.New(pool, postgres.NewTxManager(pool))
		sinks = append(sinks, repo)
	}

	if cfg.Kafka.Enabled && !cfg.Converter.DryRun {
		publisher := kafka.New(logger, cfg.Kafka)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("close kafka publisher", slog.String("error", err.Error()))
			}
		}()
		sinks = append(sinks, publisher)
	}

	pipeline := converter.NewPipeline(logger, converter.OptionsFromConfig(cfg), sinks...)
	result, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("conversion failed", slog.String("error", err.Error()))
		return 1
	}

	if repo != nil {
		segmented, failed, err := repo.CountByRun(ctx, result.RunID)
		if err != nil {
			logger.Error("count stored records", slog.String("error", err.Error()))
			return 1
		}
		logger.Info("records stored",
			slog.String("run_id", result.RunID.String()),
			slog.Int("segmented", segmented),
			slog.Int("failed", failed),
		)
		if stored := segmented + failed; stored != result.SinkWrites[repo.Name()] {
			logger.Warn("stored record count differs from sink writes",
				slog.Int("stored", stored),
				slog.Int("written", result.SinkWrites[repo.Name()]),
			)
		}
	}

	if result.Failed > 0 {
		logger.Warn("some entries could not be segmented", slog.Int("failed", result.Failed))
	}

	logger.Info("conversion completed successfully")
	return 0
}
