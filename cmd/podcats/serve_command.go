package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hangyav/podcats/internal/config"
	"github.com/hangyav/podcats/internal/feed"
	"github.com/hangyav/podcats/internal/server"
)

func newServeCommand(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve DIRECTORY",
		Short: "Serve the RSS feed and the audio files over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, args, addr)
			if err != nil {
				return err
			}

			logger := newLogger(cmd)
			meta := feed.Metadata{
				Description: cfg.Feed.Description,
				Language:    cfg.Feed.Language,
				Author:      cfg.Feed.Author,
			}
			channel, err := feed.NewChannel(cfg.RootDir, cfg.RootURL, cfg.Title, cfg.Link, meta, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Welcome to the Podcats web server!")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Your podcast feed is available at:")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "\t"+cfg.RootURL)
			fmt.Fprintln(out)

			handler := server.New(channel, cfg.RootDir, logger)
			httpServer := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Printf("graceful shutdown error: %v", err)
				}
			}()

			logger.Printf("listening on %s (audio directory: %s)", cfg.ListenAddr, cfg.RootDir)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Println("shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "",
		"address for the built-in server to listen on (default "+config.DefaultListenAddr+")")

	return cmd
}
