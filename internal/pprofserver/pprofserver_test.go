package pprofserver_test

import (
	"github.com/myrjola/casefile/internal/pprofserver"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAddr(t *testing.T) {
	addr, err := pprofserver.Addr(":6060")
	require.NoError(t, err)
	require.Equal(t, "localhost:6060", addr)

	addr, err = pprofserver.Addr("0.0.0.0:7070")
	require.NoError(t, err)
	require.Equal(t, "localhost:7070", addr)

	_, err = pprofserver.Addr("6060")
	require.Error(t, err)
}

func TestHandle(t *testing.T) {
	mux := http.NewServeMux()
	pprofserver.Handle(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
