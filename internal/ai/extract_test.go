package ai_test

import (
	"github.com/myrjola/casefile/internal/ai"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestExtractDirectives(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantTitles []string
	}{
		{
			name:       "no directives",
			text:       "# The Somerton Man\n\nA body on Somerton beach.",
			wantTitles: nil,
		},
		{
			name: "three directives in order",
			text: "Script body\n\n> SUGGESTION: The Tamam Shud case\n> SUGGESTION: Dyatlov Pass\n" +
				"> SUGGESTION: The Max Headroom signal hijacking",
			wantTitles: []string{"The Tamam Shud case", "Dyatlov Pass", "The Max Headroom signal hijacking"},
		},
		{
			name:       "marker inside line and blank titles",
			text:       "intro\n  > SUGGESTION:   Lake Bodom murders  \n> SUGGESTION:\n",
			wantTitles: []string{"Lake Bodom murders"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, titles := ai.ExtractDirectives(tt.text)
			require.Equal(t, tt.text, body, "body is returned unchanged")
			require.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestStripDirectives(t *testing.T) {
	text := "# Cold open\n\nIt was 1948.\n\n> SUGGESTION: Tamam Shud\n> SUGGESTION: Dyatlov Pass\n"
	require.Equal(t, "# Cold open\n\nIt was 1948.", ai.StripDirectives(text))
	require.Equal(t, "no markers", ai.StripDirectives("no markers"))
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ai.FootageResult
	}{
		{
			name: "embedded array",
			text: `here are results: [{"title":"a","url":"u","source":"Pexels"}] thanks`,
			want: []ai.FootageResult{{Title: "a", URL: "u", Source: "Pexels"}},
		},
		{
			name: "no array",
			text: "no array here",
			want: []ai.FootageResult{},
		},
		{
			name: "invalid json",
			text: "[{not valid json}]",
			want: []ai.FootageResult{},
		},
		{
			name: "missing fields use defaults",
			text: "```json\n[{\"url\":\"https://pixabay.com/v/1\"},{\"title\":\"Night street\",\"source\":\"\"}]\n```",
			want: []ai.FootageResult{
				{Title: "foggy harbour", URL: "https://pixabay.com/v/1", Source: "Web"},
				{Title: "Night street", URL: "#", Source: "Web"},
			},
		},
		{
			name: "non-object elements",
			text: `[{"title":"a"}, 3]`,
			want: []ai.FootageResult{},
		},
		{
			name: "closing bracket before opening",
			text: "] oops [",
			want: []ai.FootageResult{},
		},
		{
			name: "empty array",
			text: "[]",
			want: []ai.FootageResult{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ai.ExtractJSONArray(tt.text, "foggy harbour"))
		})
	}
}
