package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"podcast-archive/internal/config"
	"podcast-archive/internal/feed"
	"podcast-archive/internal/library"
	"podcast-archive/internal/metadata"
	"podcast-archive/internal/server"
)

var version = "dev"

var configFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "podcast-archive",
		Short:        "Serve a podcast feed generated from a local MP3 archive",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file")
	root.AddCommand(newServeCommand(), newVersionCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: settings.SlogLevel()}))
	slog.SetDefault(logger)

	gin.SetMode(gin.ReleaseMode)

	handler := server.New(server.Options{
		Files:         library.New(settings.MediaRoot(), logger),
		Resolver:      metadata.NewResolver(logger),
		Assembler:     feed.NewAssembler(settings, feed.NewImageResolver(settings.ImageDir)),
		ImageDir:      settings.ImageDir,
		ImageBasePath: settings.NormalizedImageBasePath(),
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:              settings.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("graceful shutdown error", "error", err)
		}
	}()

	logger.Info("listening", "addr", settings.ListenAddr, "media_dir", settings.MediaRoot())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	logger.Info("shutdown complete")
	return nil
}
