package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zz6zz666/filerag/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize filerag configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the embedding provider and core limits, and writes a .filerag.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
