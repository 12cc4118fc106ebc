package main

import (
	"context"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"net/http"
	neturl "net/url"
	"strings"
	"testing"
)

func scriptValues() neturl.Values {
	return neturl.Values{
		"topic":      {"The lighthouse keepers"},
		"channel":    {"Cold Cases"},
		"word_count": {"1500"},
		"tone":       {"suspenseful"},
		"theories":   {"on"},
	}
}

func TestScriptForm(t *testing.T) {
	server, _ := startTestServer(t, nil)

	doc, err := server.Client().GetDoc(context.Background(), "/script?topic=The+Keeper+Mystery")
	require.NoError(t, err)
	require.Equal(t, "The Keeper Mystery", doc.Find("#topic").AttrOr("value", ""))
	require.Equal(t, "1500", doc.Find("#word_count").AttrOr("value", ""))
	require.Equal(t, 5, doc.Find("#tone option").Length())
	require.Equal(t, "documentary", doc.Find("#tone option[selected]").AttrOr("value", ""))
}

func TestCompileScript(t *testing.T) {
	server, _ := startTestServer(t, nil)

	status, body := postForm(t, server, "/script", "/script", scriptValues(), true)
	require.Equal(t, http.StatusOK, status)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)

	require.Equal(t, "The Lighthouse Case", strings.TrimSpace(doc.Find("#script-result h1").Text()))
	require.NotContains(t, doc.Find("#script-result article").Text(), "SUGGESTION")

	var suggestions []string
	doc.Find(".suggestions a").Each(func(_ int, s *goquery.Selection) {
		suggestions = append(suggestions, strings.TrimSpace(s.Text()))
	})
	require.Equal(t, []string{"The Keeper Mystery", "The Flannan Isles"}, suggestions)
	href := doc.Find(".suggestions a").First().AttrOr("href", "")
	u, err := neturl.Parse(href)
	require.NoError(t, err)
	require.Equal(t, "/script", u.Path)
	require.Equal(t, "The Keeper Mystery", u.Query().Get("topic"))

	require.Equal(t, "The lighthouse keepers", doc.Find("form[action='/scripts'] input[name=title]").AttrOr("value", ""))
	require.NotContains(t, doc.Find("form[action='/scripts'] input[name=content]").AttrOr("value", ""), "SUGGESTION")
}

func TestCompileScript_validation(t *testing.T) {
	server, _ := startTestServer(t, nil)

	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"missing topic", "topic", "", "Enter a topic of at most 500 characters."},
		{"too few words", "word_count", "100", "The word count must be between 300 and 10000."},
		{"not a number", "word_count", "many", "The word count must be between 300 and 10000."},
		{"unknown tone", "tone", "cheerful", "Pick one of the listed tones."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := scriptValues()
			values.Set(tt.field, tt.value)
			status, body := postForm(t, server, "/script", "/script", values, true)
			require.Equal(t, http.StatusUnprocessableEntity, status)
			require.Contains(t, body, tt.want)
			require.NotContains(t, body, "form action=\"/scripts\"")
		})
	}
}

func TestCompileScript_overload(t *testing.T) {
	server, _ := startTestServer(t, map[string]string{
		"CASEFILE_PRIMARY_MODEL": busyModel,
		"CASEFILE_BACKUP_MODEL":  busyModel,
	})

	status, body := postForm(t, server, "/script", "/script", scriptValues(), true)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "System overload")
	// Failure notices are not archived.
	require.NotContains(t, body, `action="/scripts"`)
}

func TestSavedScripts(t *testing.T) {
	server, _ := startTestServer(t, nil)
	ctx := context.Background()

	status, body := postForm(t, server, "/script", "/script", scriptValues(), false)
	require.Equal(t, http.StatusOK, status)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	saveForm := doc.Find("form[action='/scripts']")
	require.Equal(t, 1, saveForm.Length())

	values := neturl.Values{}
	saveForm.Find("input").Each(func(_ int, s *goquery.Selection) {
		values.Set(s.AttrOr("name", ""), s.AttrOr("value", ""))
	})
	status, body = doPost(t, server, "/scripts", "application/x-www-form-urlencoded",
		strings.NewReader(values.Encode()), false)
	require.Equal(t, http.StatusOK, status)
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, "The lighthouse keepers", strings.TrimSpace(doc.Find(".saved-script header h1").Text()))
	require.Contains(t, doc.Find(".saved-script .prose").Text(), "It began on a stormy night.")
	require.NotContains(t, doc.Find(".saved-script .prose").Text(), "SUGGESTION")

	doc, err = server.Client().GetDoc(ctx, "/archive")
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("#scripts li").Length())
	href := doc.Find("#scripts a").AttrOr("href", "")
	require.True(t, strings.HasPrefix(href, "/scripts/"))

	doc, err = server.Client().SubmitForm(ctx, href, href+"/delete", nil)
	require.NoError(t, err)
	require.Contains(t, doc.Text(), "No saved scripts yet.")

	resp, err := server.Client().Get(ctx, href)
	require.NoError(t, err)
	requireStatus(t, http.StatusNotFound, resp)
}
