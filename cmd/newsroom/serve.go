package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *globalOptions) error {
	module, err := moduleBuilder(opts)
	if err != nil {
		return err
	}
	defer module.Close()

	container := module.Container()
	cfg := container.Config
	logger := container.Logger()

	handler, err := module.HTTPHandler()
	if err != nil {
		return err
	}

	var scheduler *cron.Cron
	if cfg.Commands.Enabled {
		reconcile := container.ReconcileHandler()
		scheduler = cron.New()
		expression := reconcile.CronOptions().Expression
		run := reconcile.CronHandler()
		if _, err := scheduler.AddFunc(expression, func() {
			if err := run(); err != nil {
				logger.Error("serve.reconcile.failed", "error", err)
			}
		}); err != nil {
			return err
		}
		scheduler.Start()
		logger.Info("serve.reconcile.scheduled", "expression", expression)
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serve.listening", "address", cfg.HTTP.Address, "base_path", cfg.HTTP.BasePath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("serve.shutdown")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
