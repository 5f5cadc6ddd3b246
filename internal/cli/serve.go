package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/config"
	"github.com/recurhq/aot/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the watch server",
	Long: `Serve the loop state for observers: GET /state returns the document as
JSON, and /events is a websocket that receives a round event after every
committed round of a loop running against the same state file.

The port comes from .aot/config.yaml (server.port) unless --port is given.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", -1, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	store := openStore()
	if !store.Exists() {
		return fmt.Errorf("state file not found: %s", store.Path())
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return err
	}

	serverCfg := cfg.Server
	if serverCfg == nil {
		serverCfg = config.DefaultServerConfig()
	}
	if servePort >= 0 {
		serverCfg = &config.ServerConfig{Port: servePort}
	}

	srv, err := server.NewFromConfig(serverCfg, store)
	if err != nil {
		return err
	}

	fmt.Printf("Watching %s on port %d (GET /state, ws /events).\n", store.Path(), serverCfg.Port)
	return srv.Start(cmd.Context())
}
