package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List locally available Ollama models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := loadConfigAndClient(cmd)
		if err != nil {
			return err
		}
		models, err := client.ListModels(cmd.Context())
		if err != nil {
			return err
		}
		for _, m := range models {
			marker := "  "
			if m.Name == cfg.Model {
				marker = "* "
			}
			fmt.Printf("%s%s (%.1f GB)\n", marker, m.Name, float64(m.Size)/1e9)
		}
		return nil
	},
}
