package main

import (
	"context"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/casefile/cmd/cli/archive"
	"github.com/myrjola/casefile/cmd/cli/media"
	"github.com/myrjola/casefile/cmd/cli/research"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/spf13/cobra"
	"io/fs"
	"os"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(research.Group)
	rootCmd.AddCommand(research.Compile)
	rootCmd.AddCommand(research.Footage)
	rootCmd.AddGroup(media.Group)
	rootCmd.AddCommand(media.Probe)
	rootCmd.AddGroup(archive.Group)
	rootCmd.AddCommand(archive.Sessions)
}

var rootCmd = &cobra.Command{
	Use:           "casefile-cli",
	Long:          `Command line utilities for Casefile, the research assistant for true-crime and documentary creators.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
