package repositories

import (
	"context"
	"encoding/json"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/kvstore"
	"github.com/myrjola/casefile/internal/models"
	"log/slog"
	"slices"
	"sync"
)

const (
	themeKey    = "theme"
	sessionsKey = "chat_sessions"
	scriptsKey  = "saved_scripts"
)

var ErrNotFound = errors.NewSentinel("not found")

// ArchiveRepository persists the theme, chat sessions and saved scripts.
//
// Each list is stored as a single JSON document under its own key. Every mutation reads the whole list and writes
// it back, so lists stay ordered most-recent-first.
type ArchiveRepository struct {
	store  *kvstore.Store
	logger *slog.Logger
	// mu serialises read-modify-write cycles on the lists.
	mu sync.Mutex
}

func NewArchiveRepository(store *kvstore.Store, logger *slog.Logger) *ArchiveRepository {
	return &ArchiveRepository{
		store:  store,
		logger: logger.With(slog.String("source", "ArchiveRepository")),
		mu:     sync.Mutex{},
	}
}

// StrayKeys returns the stored keys the archive does not own, such as leftovers from an older layout.
func (r *ArchiveRepository) StrayKeys(ctx context.Context) ([]string, error) {
	entries, err := r.store.List(ctx, "")
	if err != nil {
		return nil, errors.Wrap(err, "list keys")
	}
	var stray []string
	for _, e := range entries {
		switch e.Key {
		case themeKey, sessionsKey, scriptsKey:
		default:
			stray = append(stray, e.Key)
		}
	}
	return stray, nil
}

// Theme returns the persisted theme, defaulting to dark.
func (r *ArchiveRepository) Theme(ctx context.Context) (models.Theme, error) {
	value, ok, err := r.store.Get(ctx, themeKey)
	if err != nil {
		return "", errors.Wrap(err, "get theme")
	}
	if !ok || (value != string(models.ThemeLight) && value != string(models.ThemeDark)) {
		return models.ThemeDark, nil
	}
	return models.Theme(value), nil
}

func (r *ArchiveRepository) SetTheme(ctx context.Context, theme models.Theme) error {
	if err := r.store.Set(ctx, themeKey, string(theme)); err != nil {
		return errors.Wrap(err, "set theme", slog.String("theme", string(theme)))
	}
	return nil
}

// Sessions returns the archived chat sessions, most recent first.
func (r *ArchiveRepository) Sessions(ctx context.Context) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := r.readList(ctx, sessionsKey, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Session returns the archived session with id or ErrNotFound.
func (r *ArchiveRepository) Session(ctx context.Context, id string) (models.ChatSession, error) {
	sessions, err := r.Sessions(ctx)
	if err != nil {
		return models.ChatSession{}, err
	}
	idx := slices.IndexFunc(sessions, func(s models.ChatSession) bool { return s.ID == id })
	if idx == -1 {
		return models.ChatSession{}, errors.Wrap(ErrNotFound, "find session", slog.String("id", id))
	}
	return sessions[idx], nil
}

// SaveSession puts session at the front of the archive, replacing an earlier version with the same ID.
func (r *ArchiveRepository) SaveSession(ctx context.Context, session models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sessions []models.ChatSession
	if err := r.readList(ctx, sessionsKey, &sessions); err != nil {
		return err
	}
	sessions = slices.DeleteFunc(sessions, func(s models.ChatSession) bool { return s.ID == session.ID })
	sessions = slices.Insert(sessions, 0, session)
	return r.writeList(ctx, sessionsKey, sessions, len(sessions))
}

// DeleteSession removes the session with id. Deleting an unknown ID is a no-op.
func (r *ArchiveRepository) DeleteSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sessions []models.ChatSession
	if err := r.readList(ctx, sessionsKey, &sessions); err != nil {
		return err
	}
	sessions = slices.DeleteFunc(sessions, func(s models.ChatSession) bool { return s.ID == id })
	return r.writeList(ctx, sessionsKey, sessions, len(sessions))
}

// Scripts returns the saved scripts, most recent first.
func (r *ArchiveRepository) Scripts(ctx context.Context) ([]models.SavedScript, error) {
	var scripts []models.SavedScript
	if err := r.readList(ctx, scriptsKey, &scripts); err != nil {
		return nil, err
	}
	return scripts, nil
}

// Script returns the saved script with id or ErrNotFound.
func (r *ArchiveRepository) Script(ctx context.Context, id string) (models.SavedScript, error) {
	scripts, err := r.Scripts(ctx)
	if err != nil {
		return models.SavedScript{}, err
	}
	idx := slices.IndexFunc(scripts, func(s models.SavedScript) bool { return s.ID == id })
	if idx == -1 {
		return models.SavedScript{}, errors.Wrap(ErrNotFound, "find script", slog.String("id", id))
	}
	return scripts[idx], nil
}

func (r *ArchiveRepository) SaveScript(ctx context.Context, script models.SavedScript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var scripts []models.SavedScript
	if err := r.readList(ctx, scriptsKey, &scripts); err != nil {
		return err
	}
	scripts = slices.DeleteFunc(scripts, func(s models.SavedScript) bool { return s.ID == script.ID })
	scripts = slices.Insert(scripts, 0, script)
	return r.writeList(ctx, scriptsKey, scripts, len(scripts))
}

func (r *ArchiveRepository) DeleteScript(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var scripts []models.SavedScript
	if err := r.readList(ctx, scriptsKey, &scripts); err != nil {
		return err
	}
	scripts = slices.DeleteFunc(scripts, func(s models.SavedScript) bool { return s.ID == id })
	return r.writeList(ctx, scriptsKey, scripts, len(scripts))
}

func (r *ArchiveRepository) readList(ctx context.Context, key string, v any) error {
	value, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return errors.Wrap(err, "read list", slog.String("key", key))
	}
	if !ok {
		return nil
	}
	if err = json.Unmarshal([]byte(value), v); err != nil {
		return errors.Wrap(err, "decode list", slog.String("key", key))
	}
	return nil
}

// writeList stores v under key. An empty list removes the key.
func (r *ArchiveRepository) writeList(ctx context.Context, key string, v any, count int) error {
	if count == 0 {
		if err := r.store.Delete(ctx, key); err != nil {
			return errors.Wrap(err, "delete list", slog.String("key", key))
		}
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode list", slog.String("key", key))
	}
	if err = r.store.Set(ctx, key, string(data)); err != nil {
		return errors.Wrap(err, "write list", slog.String("key", key))
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "archive list written", slog.String("key", key), slog.Int("bytes", len(data)))
	return nil
}
