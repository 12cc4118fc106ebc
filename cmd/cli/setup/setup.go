// Package setup wires the application services for the command line tools from the same environment as the web
// server.
package setup

import (
	"context"
	"github.com/myrjola/casefile/internal/ai"
	"github.com/myrjola/casefile/internal/config"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/kvstore"
	"github.com/myrjola/casefile/internal/logging"
	"github.com/myrjola/casefile/internal/media"
	"github.com/myrjola/casefile/internal/repositories"
	"github.com/myrjola/casefile/internal/sqlite"
	"log/slog"
	"os"
	"time"
)

// Logger logs to stderr so that command output stays pipeable.
func Logger() *slog.Logger {
	level := slog.LevelWarn
	if cfg, err := config.LoadLogging(os.LookupEnv); err == nil {
		if _, ok := os.LookupEnv("CASEFILE_LOG_LEVEL"); ok {
			level = cfg.Options().Level
		}
	}
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	})))
}

func Config() (config.Config, error) {
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "load config")
	}
	return cfg, nil
}

// Research creates the composer and dispatcher.
func Research(ctx context.Context, cfg config.Config, logger *slog.Logger) (*ai.Composer, *ai.Dispatcher, error) {
	var (
		model ai.Model
		err   error
	)
	if cfg.AIProvider == config.ProviderOpenAI {
		model = ai.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	} else if model, err = ai.NewGeminiModel(ctx, cfg.GeminiAPIKey, ""); err != nil {
		return nil, nil, errors.Wrap(err, "new gemini model")
	}
	profile, err := ai.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load research profile")
	}
	dispatcher := ai.NewDispatcher(model, ai.Tiers{
		Primary: cfg.PrimaryModel,
		Backup:  cfg.BackupModel,
		Vision:  cfg.VisionModel,
	}, cfg.MaxInlineBytes, logger)
	return ai.NewComposer(profile, time.Now), dispatcher, nil
}

// Validator creates a media validator probing over HTTP.
func Validator(cfg config.Config, logger *slog.Logger) *media.Validator {
	return media.NewValidator(media.NewHTTPProber(cfg.ProbeTimeout, logger), logger)
}

// Archive opens the archive database. close must be called when done.
func Archive(
	ctx context.Context, cfg config.Config, logger *slog.Logger,
) (*repositories.ArchiveRepository, func(), error) {
	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	closeDB := func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}
	return repositories.NewArchiveRepository(kvstore.New(db, logger), logger), closeDB, nil
}
