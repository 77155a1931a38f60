package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ollama-chat",
	Short: "Chat client for a local Ollama server",
	Long: `ollama-chat is a chat client for a local Ollama LLM server that extracts
file artifacts and search/replace edits from assistant output and applies
them to an in-memory project.

Available commands:
  chat     - Interactive terminal chat session
  serve    - Serve the single-page web chat client
  models   - List locally available Ollama models
  version  - Print the version`,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("model", "", "override the configured model")
	rootCmd.PersistentFlags().String("host", "", "override the Ollama host")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)
}
