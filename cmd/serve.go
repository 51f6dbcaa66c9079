package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ziprun/internal/config"
	"github.com/ziadkadry99/ziprun/internal/history"
	"github.com/ziadkadry99/ziprun/internal/logging"
	"github.com/ziadkadry99/ziprun/internal/preview"
	"github.com/ziadkadry99/ziprun/internal/runs"
	"github.com/ziadkadry99/ziprun/internal/server"
	"github.com/ziadkadry99/ziprun/internal/settings"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the ziprun HTTP server: archive upload and websocket runs, previews, history and settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		previews := preview.NewRegistry(preview.BasePath)
		defer previews.Close()

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
		}, st.db)

		registerAllRoutes(srv, cfg, st, previews)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "ziprun server %s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", st.db.Path())

		return srv.Start()
	},
}

// registerAllRoutes wires up all feature routes.
func registerAllRoutes(srv *server.Server, cfg *config.Config, st *stores, previews *preview.Registry) {
	r := srv.Router()

	// History
	history.RegisterRoutes(r, st.history)

	// Settings
	settings.RegisterRoutes(r, st.settings)

	// Previews
	preview.RegisterRoutes(r, previews)

	// Runs (upload, history re-run, websocket)
	svc := runs.NewService(newRunner(cfg), st.settings, st.history, previews, cfg.MaxUploadBytes())
	runs.RegisterRoutes(r, svc)

	logging.Debug("routes registered", "max_upload_mb", cfg.MaxUploadMB)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 5173, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
