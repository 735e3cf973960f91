package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhornak/faceclock/internal/config"
	"github.com/mhornak/faceclock/internal/extractor"
	"github.com/mhornak/faceclock/internal/recognize"
	"github.com/mhornak/faceclock/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	Long: `Start the Faceclock API server.
The server accepts recognition attempts from kiosk frontends, manages
the embedding gallery and serves attendance records.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	g, err := openGallery(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Gallery loaded: %d identities (dim %d)\n", g.Size(), g.Dim())

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	led, err := openLedger(store, cfg)
	if err != nil {
		return err
	}

	var registrar *recognize.Registrar
	if cfg.Extractor.URL != "" {
		registrar = recognize.NewRegistrar(extractor.NewClient(cfg.Extractor.URL), g, cfg.Gallery.Path)
		fmt.Printf("Extractor service: %s\n", cfg.Extractor.URL)
	} else {
		fmt.Println("EXTRACTOR_URL not set, image enrollment disabled")
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, g, led, registrar)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		if g.Dirty() {
			if err := g.Save(cfg.Gallery.Path); err != nil {
				fmt.Printf("Warning: failed to save gallery: %v\n", err)
			} else {
				fmt.Println("Gallery saved")
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Faceclock API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
