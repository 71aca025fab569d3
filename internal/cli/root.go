package cli

import (
	"github.com/spf13/cobra"

	"github.com/streamchat-io/streamchat/internal/cli/chat"
	"github.com/streamchat-io/streamchat/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "streamchat",
	Short: "streamchat - terminal client for a search-augmented chat backend",
	Long: `Talk to a search-augmented generation backend from your terminal.

The backend answers each question over a live event stream that
interleaves web-search progress, incremental answer fragments, and a
resumption token. streamchat folds that stream into a single coherent
conversation and renders it as it grows.

Modes:
- Interactive: streamchat chat
- One-shot:    streamchat chat "what's the weather in Paris?"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(chat.NewChatCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("streamchat version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
