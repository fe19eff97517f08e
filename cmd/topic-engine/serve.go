package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-engine/internal/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway for browser frontends",
	Long: `Serve exposes the catalog operations over HTTP: topic search, PDF
download (single file or zip archive), published Q&A, and the local
history ledger. The gateway is stateless; every request carries its own
query and selection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		client := newCatalogClient(cfg)
		client.Progress = nil // request-scoped work should not write to the terminal

		hist := openHistory(cfg)
		if hist != nil {
			defer hist.Close()
		}

		srv := &http.Server{
			Addr:        cfg.Server.Addr,
			Handler:     gateway.NewRouter(client, hist, cfg),
			ReadTimeout: 15 * time.Second,
			// No write timeout: batch downloads legitimately run for minutes.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			fmt.Fprintf(os.Stderr, "listening on %s\n", cfg.Server.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		fmt.Fprintln(os.Stderr, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
}
