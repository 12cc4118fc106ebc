package main

import (
	"context"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/kvstore"
	"github.com/myrjola/casefile/internal/repositories"
	"github.com/myrjola/casefile/internal/sqlite"
	"github.com/myrjola/casefile/internal/testhelpers"
	"log/slog"
	"os"
	"time"
)

// main applies the current schema to a copy of an existing archive and checks that everything in it still decodes.
func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds
	defer cancel()

	if sqliteURL, ok = os.LookupEnv("CASEFILE_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "CASEFILE_SQLITE_URL not set")
		os.Exit(1) //nolint:gocritic // nothing to clean up yet
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}
	if err = check(ctx, repositories.NewArchiveRepository(kvstore.New(db, logger), logger), logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "archive check failed", errors.SlogError(err))
		_ = db.Close()
		os.Exit(1)
	}
	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
}

func check(ctx context.Context, archive *repositories.ArchiveRepository, logger *slog.Logger) error {
	theme, err := archive.Theme(ctx)
	if err != nil {
		return errors.Wrap(err, "read theme")
	}
	sessions, err := archive.Sessions(ctx)
	if err != nil {
		return errors.Wrap(err, "read sessions")
	}
	scripts, err := archive.Scripts(ctx)
	if err != nil {
		return errors.Wrap(err, "read scripts")
	}
	stray, err := archive.StrayKeys(ctx)
	if err != nil {
		return errors.Wrap(err, "list stray keys")
	}
	if len(stray) > 0 {
		logger.LogAttrs(ctx, slog.LevelWarn, "archive has stray keys", slog.Any("keys", stray))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "archive contents",
		slog.String("theme", string(theme)),
		slog.Int("sessions", len(sessions)),
		slog.Int("scripts", len(scripts)))
	return nil
}
