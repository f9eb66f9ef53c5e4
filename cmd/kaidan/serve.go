package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/jackzampolin/kaidan/docs"
	"github.com/jackzampolin/kaidan/internal/config"
	"github.com/jackzampolin/kaidan/internal/home"
	"github.com/jackzampolin/kaidan/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Kaidan server",
	Long: `Start the Kaidan HTTP server.

The server provides:
  - POST /api/chat  - Ask a question, answered with cited sources
  - GET  /health    - Basic server health check
  - GET  /status    - Configured providers and model selections
  - GET  /swagger   - API documentation

Configuration is hot-reloaded when the config file changes.

Examples:
  kaidan serve                    # Start on default port 8080
  kaidan serve --port 3000        # Start on custom port
  kaidan serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Fall back to the home directory config when no file is named.
		configPath := cfgFile
		if configPath == "" {
			if h, err := home.New(homeDir); err == nil && h.HasConfig() {
				configPath = h.ConfigPath()
			}
		}

		cfgMgr, err := config.NewManager(configPath)
		if err != nil {
			return err
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
