package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kodahr27/ollama-chat-app/pkg/history"
	"github.com/kodahr27/ollama-chat-app/pkg/project"
	"github.com/kodahr27/ollama-chat-app/pkg/utils"
	"github.com/kodahr27/ollama-chat-app/pkg/webui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the single-page web chat client",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "web UI port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := utils.GetLogger()
	cfg, client, err := loadConfigAndClient(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.WebPort = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.CheckConnection(ctx); err != nil {
		return err
	}

	store, err := project.OpenStore(cfg.ProjectDB())
	if err != nil {
		return err
	}
	defer store.Close()

	convs, err := history.OpenStore(cfg.HistoryDB())
	if err != nil {
		return err
	}
	defer convs.Close()

	server := webui.NewServer(cfg, client, store, convs, logger)
	if err := server.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Web UI at http://localhost:%d (Ctrl-C to stop)\n", cfg.WebPort)

	<-ctx.Done()
	return server.Shutdown()
}
