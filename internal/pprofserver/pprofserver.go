// Package pprofserver serves the runtime profiles on a loopback listener.
package pprofserver

import (
	"context"
	"github.com/myrjola/casefile/internal/errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

// Addr returns the loopback address for port, e.g. ":6060" becomes "localhost:6060". The host part of port is
// ignored so that the profiles are never reachable from other machines.
func Addr(port string) (string, error) {
	_, p, err := net.SplitHostPort(port)
	if err != nil {
		return "", errors.Wrap(err, "split host port", slog.String("port", port))
	}
	return net.JoinHostPort("localhost", p), nil
}

// Launch serves pprof on the loopback interface until ctx is done.
func Launch(ctx context.Context, port string, logger *slog.Logger) error {
	addr, err := Addr(port)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	Handle(mux)
	srv := &http.Server{ //nolint:exhaustruct // profiles stream for as long as requested
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("pprof_addr", addr))
		if serveErr := srv.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			logger.LogAttrs(ctx, slog.LevelError, "pprof server stopped", errors.SlogError(serveErr))
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return nil
}
