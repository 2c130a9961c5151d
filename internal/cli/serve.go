package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/backend"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/server"
)

// Serve command flags
var (
	servePort int
	serveHost string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config, 18090)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host address to bind to (default from config, localhost)")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long: `Start an HTTP server exposing the project store as a JSON API.

The household, member, invitation and room activity routes are served
only when a backend URL is configured; otherwise they answer 503.

Examples:
  gtadmin serve                    # Start on the configured port
  gtadmin serve --port 8080        # Start on a custom port
  gtadmin serve --host 0.0.0.0     # Bind to all interfaces`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// serverConfig assembles the server config from flags and the global
// config. The backend field stays nil when no backend is configured.
func serverConfig(a *app) (server.Config, error) {
	cfg := GetConfig()
	sc := server.Config{
		Port:   cfg.Server.Port,
		Host:   cfg.Server.Host,
		Store:  a.store,
		Logger: logger,
	}
	if servePort != 0 {
		sc.Port = servePort
	}
	if serveHost != "" {
		sc.Host = serveHost
	}

	if cfg.Backend.Enabled() {
		client, err := backend.New(cfg.Backend, logger)
		if err != nil {
			return sc, err
		}
		sc.Backend = client
	}
	return sc, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	sc, err := serverConfig(a)
	if err != nil {
		return err
	}
	srv, err := server.New(sc)
	if err != nil {
		return errors.WrapInternal(err, "failed to create server")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	OutputLine("gtadmin API listening at http://%s", srv.Address())
	if sc.Backend == nil {
		OutputLine("No backend configured; household routes are disabled")
	}
	OutputLine("Press Ctrl+C to stop")

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-stop:
		OutputLine("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	OutputLine("Server stopped")
	return nil
}
