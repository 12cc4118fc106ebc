// Package render turns untrusted model output into HTML where every media reference is validated before it is shown.
package render

import (
	"bytes"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/media"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
)

const (
	ImagePath = "/media/image"
	VideoPath = "/media/video"
)

// Renderer converts markdown to HTML and renders media fragments.
type Renderer struct {
	md        goldmark.Markdown
	fragments *template.Template
}

// New parses the fragment templates from fsys.
func New(fsys fs.FS) (*Renderer, error) {
	fragments, err := template.ParseFS(fsys, "templates/fragments/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "parse fragment templates")
	}
	return &Renderer{
		// Raw HTML is omitted and dangerous link destinations are dropped unless WithUnsafe is set.
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		fragments: fragments,
	}, nil
}

type placeholderData struct {
	URL string
}

// Markdown renders text. Images become placeholders that load their validated fragment and every recognised video
// link is followed by a video placeholder, so the text itself never waits for a probe.
func (r *Renderer) Markdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", errors.Wrap(err, "convert markdown")
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", errors.Wrap(err, "parse html")
	}

	var fragmentErr error
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		caption, _ := s.Attr("alt")
		fragment, ferr := r.imagePlaceholder(src, caption)
		if ferr != nil {
			fragmentErr = ferr
			return
		}
		s.ReplaceWithHtml(fragment)
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		s.SetAttr("target", "_blank")
		s.SetAttr("rel", "noopener noreferrer")
		id, ok := media.ExtractVideoID(href)
		if !ok {
			return
		}
		fragment, ferr := r.placeholder("video-placeholder", VideoPath, url.Values{
			"id":    {id},
			"title": {strings.TrimSpace(s.Text())},
		})
		if ferr != nil {
			fragmentErr = ferr
			return
		}
		s.AfterHtml(fragment)
	})
	if fragmentErr != nil {
		return "", fragmentErr
	}

	var out strings.Builder
	body := doc.Find("body")
	if len(body.Nodes) > 0 {
		for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			if err = html.Render(&out, c); err != nil {
				return "", errors.Wrap(err, "render html")
			}
		}
	}
	return template.HTML(out.String()), nil //nolint:gosec // sanitised by goldmark and re-serialised from the DOM
}

func (r *Renderer) imagePlaceholder(src, caption string) (string, error) {
	pending := media.ImagePending(src, caption)
	if pending.State != media.StateLoading {
		var sb strings.Builder
		if err := r.ImageFragment(&sb, pending); err != nil {
			return "", err
		}
		return sb.String(), nil
	}
	return r.placeholder("image-placeholder", ImagePath, url.Values{"src": {src}, "caption": {caption}})
}

func (r *Renderer) placeholder(name, path string, query url.Values) (string, error) {
	var sb strings.Builder
	if err := r.fragments.ExecuteTemplate(&sb, name, placeholderData{URL: path + "?" + query.Encode()}); err != nil {
		return "", errors.Wrap(err, "execute placeholder", slog.String("template", name))
	}
	return sb.String(), nil
}

// ImageFragment writes the terminal state of an image reference. It never writes an img element for a failed image.
func (r *Renderer) ImageFragment(w io.Writer, result media.ImageResult) error {
	if err := r.fragments.ExecuteTemplate(w, "image", result); err != nil {
		return errors.Wrap(err, "execute image fragment")
	}
	return nil
}

// VideoFragment writes the terminal state of a video reference. Only a loaded video gets an iframe.
func (r *Renderer) VideoFragment(w io.Writer, result media.VideoResult) error {
	if err := r.fragments.ExecuteTemplate(w, "video", result); err != nil {
		return errors.Wrap(err, "execute video fragment")
	}
	return nil
}
