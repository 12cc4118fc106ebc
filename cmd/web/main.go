package main

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/casefile/internal/ai"
	"github.com/myrjola/casefile/internal/config"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/kvstore"
	"github.com/myrjola/casefile/internal/logging"
	"github.com/myrjola/casefile/internal/media"
	"github.com/myrjola/casefile/internal/pprofserver"
	"github.com/myrjola/casefile/internal/render"
	"github.com/myrjola/casefile/internal/repositories"
	"github.com/myrjola/casefile/internal/sqlite"
	"github.com/myrjola/casefile/internal/transcribe"
	"github.com/myrjola/casefile/ui"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const transcriptionQueueSize = 8

type application struct {
	logger         *slog.Logger
	cfg            config.Config
	sessionManager *scs.SessionManager
	htmx           *htmx.HTMX
	composer       *ai.Composer
	dispatcher     *ai.Dispatcher
	archive        *repositories.ArchiveRepository
	validator      *media.Validator
	renderer       *render.Renderer
	worker         *transcribe.Worker
	// stopStreams is closed when the server shuts down so that SSE handlers return.
	stopStreams chan struct{}
}

func newModel(ctx context.Context, cfg config.Config) (ai.Model, error) {
	if cfg.AIProvider == config.ProviderOpenAI {
		return ai.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	}
	model, err := ai.NewGeminiModel(ctx, cfg.GeminiAPIKey, "")
	if err != nil {
		return nil, errors.Wrap(err, "new gemini model")
	}
	return model, nil
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	cfg, err := config.Load(lookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	if cfg.PprofAddr != "" {
		// Listens on localhost only so that it's not open to the world.
		if err = pprofserver.Launch(ctx, cfg.PprofAddr, logger); err != nil {
			return errors.Wrap(err, "launch pprof server")
		}
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()
	go db.StartDatabaseOptimizer(ctx, 24*time.Hour) //nolint:mnd // daily

	model, err := newModel(ctx, cfg)
	if err != nil {
		return err
	}
	profile, err := ai.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return errors.Wrap(err, "load research profile")
	}
	renderer, err := render.New(ui.Files)
	if err != nil {
		return errors.Wrap(err, "new renderer")
	}

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour) //nolint:mnd // daily
	defer sessionStore.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = sessionStore
	sessionManager.Lifetime = 30 * 24 * time.Hour //nolint:mnd // a month
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	worker := transcribe.NewWorker(
		transcribe.NewWhisperTranscriber(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.WhisperModel),
		transcriptionQueueSize,
		logger,
	)
	go worker.Run(ctx)

	app := application{
		logger:         logger,
		cfg:            cfg,
		sessionManager: sessionManager,
		htmx:           htmx.New(),
		composer:       ai.NewComposer(profile, time.Now),
		dispatcher: ai.NewDispatcher(model, ai.Tiers{
			Primary: cfg.PrimaryModel,
			Backup:  cfg.BackupModel,
			Vision:  cfg.VisionModel,
		}, cfg.MaxInlineBytes, logger),
		archive:     repositories.NewArchiveRepository(kvstore.New(db, logger), logger),
		validator:   media.NewValidator(media.NewHTTPProber(cfg.ProbeTimeout, logger), logger),
		renderer:    renderer,
		worker:      worker,
		stopStreams: make(chan struct{}),
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	ctx := context.Background()

	// The .env file is optional, the environment wins over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).LogAttrs(ctx, slog.LevelError, "failed to load .env",
			errors.SlogError(err))
		os.Exit(1)
	}

	logCfg, err := config.LoadLogging(os.LookupEnv)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).LogAttrs(ctx, slog.LevelError, "failed to load logging config",
			errors.SlogError(err))
		os.Exit(1)
	}
	logger, logCloser := logging.NewLogger(os.Stdout, logCfg.Options())

	err = run(ctx, logger, os.LookupEnv)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
	}
	_ = logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}
