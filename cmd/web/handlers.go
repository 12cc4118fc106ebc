package main

import (
	"bytes"
	"fmt"
	"github.com/myrjola/casefile/internal/contexthelpers"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/ui"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to directory inside ui/templates/pages folder. It has to include a template named "page".
func (app *application) pageTemplate(pageName string) (*template.Template, error) {
	patterns := []string{
		"templates/base.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName),
	}

	// We need to initialize the FuncMap before parsing the files. These will be overridden in the render function.
	t, err := template.New(pageName).Funcs(template.FuncMap{
		"nonce": func() string {
			panic("not implemented")
		},
		"csrf": func() string {
			panic("not implemented")
		},
		"markdown": app.renderer.Markdown,
		"date": func(t time.Time) string {
			return t.Local().Format("Jan 2, 2006 15:04")
		},
	}).ParseFS(ui.Files, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "parse templates", slog.String("page", pageName))
	}
	return t, nil
}

// execute runs the template name of page with the request-scoped functions bound.
func (app *application) execute(w io.Writer, r *http.Request, page, name string, data any) error {
	t, err := app.pageTemplate(page)
	if err != nil {
		return err
	}

	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>",
		template.HTMLEscapeString(contexthelpers.CSRFToken(ctx)))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // the token is escaped above.
		},
	})
	if err = t.ExecuteTemplate(w, name, data); err != nil {
		return errors.Wrap(err, "execute template", slog.String("page", page), slog.String("template", name))
	}
	return nil
}

// render writes the full page. htmx requests get only the block named partial when it is not empty.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page, partial string, data any) {
	name := "base"
	if partial != "" && app.htmx.NewHandler(w, r).IsHxRequest() {
		name = partial
	}

	buf := new(bytes.Buffer)
	if err := app.execute(buf, r, page, name, data); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
