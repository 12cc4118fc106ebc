package research

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/myrjola/casefile/cmd/cli/setup"
	"github.com/myrjola/casefile/internal/ai"
	"github.com/spf13/cobra"
	"io"
	"strings"
)

var Group = &cobra.Group{
	ID:    "research",
	Title: "Research",
}

func init() {
	Compile.Flags().Int("words", 1500, "approximate length of the script")
	Compile.Flags().String("tone", ai.Tones[0], "narration tone, one of "+strings.Join(ai.Tones, ", "))
	Compile.Flags().String("channel", "", "channel the script is written for")
	Compile.Flags().Bool("theories", false, "include a section for alternative theories")
}

var Compile = &cobra.Command{
	Use:     "compile [topic]",
	GroupID: "research",
	Short:   "Compile a script",
	Long:    `Compiles a long-form narration script about the topic and lists suggested follow-up cases.`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := setup.Logger()
		cfg, err := setup.Config()
		if err != nil {
			return err
		}
		composer, dispatcher, err := setup.Research(ctx, cfg, logger)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		params := ai.ScriptParams{Topic: strings.Join(args, " "), Channel: "", WordCount: 0, Tone: "", Theories: false}
		if params.WordCount, err = flags.GetInt("words"); err != nil {
			return err //nolint:wrapcheck // flag errors are self-explanatory
		}
		if params.Tone, err = flags.GetString("tone"); err != nil {
			return err //nolint:wrapcheck // flag errors are self-explanatory
		}
		if params.Channel, err = flags.GetString("channel"); err != nil {
			return err //nolint:wrapcheck // flag errors are self-explanatory
		}
		if params.Theories, err = flags.GetBool("theories"); err != nil {
			return err //nolint:wrapcheck // flag errors are self-explanatory
		}
		env, err := composer.Script(params)
		if err != nil {
			return err //nolint:wrapcheck // validation errors name the field
		}

		resp := dispatcher.Dispatch(ctx, env)
		_, suggestions := ai.ExtractDirectives(resp.Text)
		PrintScript(cmd.OutOrStdout(), ai.StripDirectives(resp.Text), suggestions, resp.Tier)
		return nil
	},
}

// PrintScript writes the script followed by the suggested cases.
func PrintScript(w io.Writer, body string, suggestions []string, tier ai.Tier) {
	if tier == "" {
		_, _ = color.New(color.FgRed).Fprintln(w, body)
		return
	}
	_, _ = fmt.Fprintln(w, body)
	if len(suggestions) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = color.New(color.Bold).Fprintln(w, "Up next:")
	for _, s := range suggestions {
		_, _ = color.New(color.FgCyan).Fprintf(w, "  • %s\n", s)
	}
}

var Footage = &cobra.Command{
	Use:     "footage [query]",
	GroupID: "research",
	Short:   "Search stock footage",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := setup.Logger()
		cfg, err := setup.Config()
		if err != nil {
			return err
		}
		composer, dispatcher, err := setup.Research(ctx, cfg, logger)
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		resp := dispatcher.Dispatch(ctx, composer.Footage(query))
		if resp.Tier == "" {
			_, _ = color.New(color.FgRed).Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		}
		PrintFootage(cmd.OutOrStdout(), ai.ExtractJSONArray(resp.Text, query))
		return nil
	},
}

func PrintFootage(w io.Writer, results []ai.FootageResult) {
	if len(results) == 0 {
		_, _ = color.New(color.FgYellow).Fprintln(w, "No footage found.")
		return
	}
	for _, r := range results {
		_, _ = color.New(color.Bold).Fprint(w, r.Title)
		_, _ = color.New(color.Faint).Fprintf(w, " (%s)\n", r.Source)
		_, _ = fmt.Fprintf(w, "  %s\n", r.URL)
	}
}
