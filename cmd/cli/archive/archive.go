package archive

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/myrjola/casefile/cmd/cli/setup"
	"github.com/myrjola/casefile/internal/models"
	"github.com/spf13/cobra"
	"io"
)

var Group = &cobra.Group{
	ID:    "archive",
	Title: "Archive",
}

func init() {
	Sessions.Flags().Bool("scripts", false, "list saved scripts instead of research sessions")
}

var Sessions = &cobra.Command{
	Use:     "sessions",
	GroupID: "archive",
	Short:   "List archived research sessions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		logger := setup.Logger()
		cfg, err := setup.Config()
		if err != nil {
			return err
		}
		archive, closeDB, err := setup.Archive(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeDB()

		scripts, err := cmd.Flags().GetBool("scripts")
		if err != nil {
			return err //nolint:wrapcheck // flag errors are self-explanatory
		}
		if scripts {
			var saved []models.SavedScript
			if saved, err = archive.Scripts(ctx); err != nil {
				return err //nolint:wrapcheck // already annotated
			}
			PrintScripts(cmd.OutOrStdout(), saved)
			return nil
		}
		sessions, err := archive.Sessions(ctx)
		if err != nil {
			return err //nolint:wrapcheck // already annotated
		}
		PrintSessions(cmd.OutOrStdout(), sessions)
		return nil
	},
}

const timeFormat = "2006-01-02 15:04"

func PrintSessions(w io.Writer, sessions []models.ChatSession) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, "No research sessions.")
		return
	}
	for _, s := range sessions {
		_, _ = color.New(color.Faint).Fprintf(w, "%s  ", s.Timestamp.Local().Format(timeFormat))
		_, _ = color.New(color.Bold).Fprint(w, s.Title)
		_, _ = fmt.Fprintf(w, "  (%d messages, %s)\n", len(s.Messages), s.ID)
	}
}

func PrintScripts(w io.Writer, scripts []models.SavedScript) {
	if len(scripts) == 0 {
		_, _ = fmt.Fprintln(w, "No saved scripts.")
		return
	}
	for _, s := range scripts {
		_, _ = color.New(color.Faint).Fprintf(w, "%s  ", s.Timestamp.Local().Format(timeFormat))
		_, _ = color.New(color.Bold).Fprint(w, s.Title)
		_, _ = fmt.Fprintf(w, "  (%s)\n", s.ID)
	}
}
