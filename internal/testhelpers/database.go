package testhelpers

import (
	"context"
	"github.com/myrjola/casefile/internal/sqlite"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

// NewDatabase opens the archive database at url, ":memory:" for an isolated in-memory one, and closes it when the
// test ends.
func NewDatabase(t *testing.T, url string) *sqlite.Database {
	t.Helper()
	db, err := sqlite.NewDatabase(context.Background(), url, NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}
