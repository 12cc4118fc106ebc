package main

import (
	"context"
	"github.com/myrjola/casefile/internal/e2etest"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/logging"
	"log/slog"
	neturl "net/url"
	"os"
	"strings"
	"time"
)

// pages are rendered without calling the model.
var pages = []struct {
	path  string
	title string
}{
	{"/", "Research"},
	{"/script", "Script"},
	{"/footage", "Footage"},
	{"/transcribe", "Transcribe"},
	{"/archive", "Archive"},
}

func TestPages(ctx context.Context, client *e2etest.Client) error {
	for _, page := range pages {
		doc, err := client.GetDoc(ctx, page.path)
		if err != nil {
			return errors.Wrap(err, "get page", slog.String("path", page.path))
		}
		if title := doc.Find("title").Text(); !strings.HasPrefix(title, page.title) {
			return errors.New("unexpected title", slog.String("path", page.path), slog.String("title", title))
		}
	}
	return nil
}

// TestTheme toggles the theme twice so that the stored preference ends up unchanged.
func TestTheme(ctx context.Context, client *e2etest.Client) error {
	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return errors.Wrap(err, "get home")
	}
	before := doc.Find("html").AttrOr("data-theme", "")
	for range 2 {
		if doc, err = client.SubmitForm(ctx, "/", "/theme", neturl.Values{"return_to": {"/"}}); err != nil {
			return errors.Wrap(err, "toggle theme")
		}
	}
	if after := doc.Find("html").AttrOr("data-theme", ""); after != before {
		return errors.New("theme not restored", slog.String("before", before), slog.String("after", after))
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only the base URL to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <base url>")
		os.Exit(1)
	}

	var (
		url    = strings.TrimSuffix(os.Args[1], "/")
		client *e2etest.Client
		err    error
	)
	ctx = logging.WithAttrs(ctx, slog.String("url", url))
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // 30 seconds
	defer cancel()

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1) //nolint:gocritic // nothing to clean up
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestPages(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing pages", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestTheme(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing theme", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
}
