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

	"github.com/iwvelando/tvm-solver/internal/server"
	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	configPath    string
	address       string
	maxUploadSize string
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&opts.address, "address", "", "listen address override")
	cmd.Flags().StringVar(&opts.maxUploadSize, "max-upload-size", "", "upload size override, e.g. 512K or 2M")

	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	cfg, err := server.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.address != "" {
		cfg.Address = opts.address
	}
	if opts.maxUploadSize != "" {
		size, err := server.ParseSize(opts.maxUploadSize)
		if err != nil {
			return err
		}
		cfg.SetUploadSizeBytes(size)
	}

	logger, err := initializeLogger(cfg.Logging, root.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), version, cfg.Solver),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		)
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

	logger.Info("shutting down server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
