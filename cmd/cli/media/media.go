package media

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/myrjola/casefile/cmd/cli/setup"
	"github.com/myrjola/casefile/internal/media"
	"github.com/spf13/cobra"
	"io"
)

var Group = &cobra.Group{
	ID:    "media",
	Title: "Media",
}

func init() {
	Probe.Flags().String("caption", "", "caption used to seed the fallback search")
}

var Probe = &cobra.Command{
	Use:     "probe [url]",
	GroupID: "media",
	Short:   "Validate an image or video link",
	Long: `Probes an image URL or the thumbnail of a YouTube link and prints whether it would render, the same way
answers are validated in the web interface.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := setup.Config()
		if err != nil {
			return err
		}
		validator := setup.Validator(cfg, setup.Logger())
		caption, err := cmd.Flags().GetString("caption")
		if err != nil {
			return err //nolint:wrapcheck // flag errors are self-explanatory
		}

		if id, ok := media.ExtractVideoID(args[0]); ok {
			PrintVideo(cmd.OutOrStdout(), validator.Video(ctx, id, caption))
			return nil
		}
		PrintImage(cmd.OutOrStdout(), validator.Image(ctx, args[0], caption))
		return nil
	},
}

func PrintImage(w io.Writer, r media.ImageResult) {
	switch {
	case r.State == media.StateLoaded:
		_, _ = color.New(color.FgGreen).Fprintf(w, "✔ image loads: %s\n", r.Src)
	case r.SourcePage != "":
		_, _ = color.New(color.FgYellow).Fprintf(w, "✘ wrapper page, not an image: %s\n", r.SourcePage)
		_, _ = fmt.Fprintf(w, "  search: %s\n", r.SearchURL)
	default:
		_, _ = color.New(color.FgRed).Fprintf(w, "✘ image unavailable: %s\n", r.Src)
		_, _ = fmt.Fprintf(w, "  search: %s\n", r.SearchURL)
	}
}

func PrintVideo(w io.Writer, r media.VideoResult) {
	if r.State == media.StateLoaded {
		_, _ = color.New(color.FgGreen).Fprintf(w, "✔ video available: %s\n", r.EmbedURL)
		return
	}
	_, _ = color.New(color.FgRed).Fprintf(w, "✘ video restricted: %s\n", r.VideoID)
	_, _ = fmt.Fprintf(w, "  search: %s\n", r.SearchURL)
}
