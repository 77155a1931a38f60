package cmd

import (
	"github.com/kodahr27/ollama-chat-app/pkg/configuration"
	"github.com/kodahr27/ollama-chat-app/pkg/llm"
	"github.com/spf13/cobra"
)

// loadConfigAndClient applies flag overrides to the persisted config and
// builds the Ollama client.
func loadConfigAndClient(cmd *cobra.Command) (*configuration.Config, *llm.Client, error) {
	cfg := configuration.Load()
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model = model
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.OllamaHost = host
	}
	client, err := llm.NewClient(cfg.OllamaHost, cfg.Model)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}
