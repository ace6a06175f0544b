package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "filerag",
	Short: "Per-conversation file RAG engine for chat bots",
	Long: `filerag gives each chat conversation its own short-lived knowledge
base: uploaded files are chunked and embedded into isolated vector
indexes, relevant fragments are injected into outgoing LLM requests,
and every index is reclaimed once its file grows stale or has been
used for enough rounds.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".filerag.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
