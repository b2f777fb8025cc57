package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"goodwatch/internal/api"
	"goodwatch/internal/logging"
	"goodwatch/internal/pool"
	"goodwatch/internal/recommend"
)

const viewSweepInterval = time.Minute

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx, bind)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind (host:port)")
	return cmd
}

func runServe(cmdCtx context.Context, ctx *commandContext, bind string) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if bind != "" {
		cfg.Server.Bind = bind
	}
	logger := ctx.log()

	st, err := ctx.openStore()
	if err != nil {
		logger.Error("open catalog store", logging.Error(err))
		return err
	}
	defer st.Close()

	if count, err := st.CountMovies(signalCtx); err == nil && count == 0 {
		logging.WarnWithContext(logger, "catalog is empty", "catalog_empty",
			logging.String(logging.FieldErrorHint, "run 'goodwatch catalog import' to fill it"),
			logging.String(logging.FieldImpact, "the catalog strategy will return no movies"),
		)
	}

	rec, err := recommend.New(cfg, st, logger)
	if err != nil {
		return fmt.Errorf("build recommender: %w", err)
	}

	views := pool.NewRegistry(cfg.ViewTTL())
	go views.Run(signalCtx, viewSweepInterval)

	svc := api.NewService(rec, st, views, api.ServiceOptions{
		ReplacementTimeout: cfg.ReplacementTimeout(),
		PoolLowWater:       cfg.Recommend.PoolLowWater,
		PoolTarget:         cfg.Recommend.PoolTarget,
	}, logger)
	server := api.NewServer(cfg, svc, logger)
	if err := server.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("shutting down")
	server.Stop()
	views.Wait()
	return nil
}
