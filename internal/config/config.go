// Package config describes the process configuration read from the environment.
package config

import (
	"github.com/myrjola/casefile/internal/envstruct"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/logging"
	"log/slog"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Addr is the address the web server listens on. Use "localhost:0" for a random port.
	Addr string `env:"CASEFILE_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the path to the local archive database or ":memory:".
	SqliteURL string `env:"CASEFILE_SQLITE_URL" envDefault:"./casefile.sqlite"`
	// PprofAddr enables a loopback pprof listener when set, e.g. ":6060".
	PprofAddr string `env:"CASEFILE_PPROF_ADDR" envDefault:""`

	AIProvider    string `env:"CASEFILE_AI_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY" envDefault:""`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:""`
	PrimaryModel  string `env:"CASEFILE_PRIMARY_MODEL" envDefault:"gemini-2.5-flash"`
	BackupModel   string `env:"CASEFILE_BACKUP_MODEL" envDefault:"gemini-2.5-pro"`
	VisionModel   string `env:"CASEFILE_VISION_MODEL" envDefault:"gemini-2.5-flash"`
	WhisperModel  string `env:"CASEFILE_WHISPER_MODEL" envDefault:"whisper-1"`
	// MaxInlineBytes caps attachments sent inline to the vision tier.
	MaxInlineBytes int64 `env:"CASEFILE_MAX_INLINE_BYTES" envDefault:"20971520"`
	// ProfilePath points to a YAML research profile overriding the built-in outlet and forum lists.
	ProfilePath string `env:"CASEFILE_PROFILE_PATH" envDefault:""`

	ProbeTimeout time.Duration `env:"CASEFILE_PROBE_TIMEOUT" envDefault:"10s"`
	// RequestTimeout bounds page requests. Model calls have no timeout of their own so this needs to be generous.
	RequestTimeout time.Duration `env:"CASEFILE_REQUEST_TIMEOUT" envDefault:"180s"`
	// MaxUploadBytes caps multipart uploads.
	MaxUploadBytes int64 `env:"CASEFILE_MAX_UPLOAD_BYTES" envDefault:"104857600"`
}

// Logging is loaded before Config so that configuration errors can be logged.
type Logging struct {
	Level string `env:"CASEFILE_LOG_LEVEL" envDefault:"info"`
	// File enables an additional JSON log in a rotating file.
	File      string `env:"CASEFILE_LOG_FILE" envDefault:""`
	MaxSizeMB int    `env:"CASEFILE_LOG_MAX_SIZE_MB" envDefault:"10"`
}

var (
	ErrUnknownProvider = errors.NewSentinel("unknown AI provider")
	ErrInvalidLogLevel = errors.NewSentinel("invalid log level")
)

// LoadLogging populates Logging from lookupEnv which has the same signature as [os.LookupEnv].
func LoadLogging(lookupEnv func(string) (string, bool)) (Logging, error) {
	var cfg Logging
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Logging{}, errors.Wrap(err, "populate logging config")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return Logging{}, errors.Wrap(ErrInvalidLogLevel, cfg.Level)
	}
	return cfg, nil
}

// Options converts the configuration for [logging.NewLogger].
func (l Logging) Options() logging.Options {
	return logging.Options{
		Level:     logging.ParseLevel(l.Level),
		FilePath:  l.File,
		MaxSizeMB: l.MaxSizeMB,
	}
}

// Load populates Config from lookupEnv which has the same signature as [os.LookupEnv].
func Load(lookupEnv func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Config{}, errors.Wrap(err, "populate config")
	}
	if cfg.AIProvider != ProviderGemini && cfg.AIProvider != ProviderOpenAI {
		return Config{}, errors.Wrap(ErrUnknownProvider, cfg.AIProvider)
	}
	return cfg, nil
}
