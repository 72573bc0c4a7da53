package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/prism-brain/prism/pkg/cli/config"
	controller "github.com/prism-brain/prism/pkg/controller/http"
	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/riskdb"
	"github.com/prism-brain/prism/pkg/infra/gcs"
	"github.com/prism-brain/prism/pkg/infra/slackx"
	"github.com/prism-brain/prism/pkg/usecase"
	"github.com/prism-brain/prism/pkg/utils/async"
)

func cmdServe() *cli.Command {
	var (
		serverCfg  config.Server
		authCfg    config.Auth
		storeCfg   config.Store
		sourcesCfg config.Sources
		notifyCfg  config.Notify
		sentryCfg  config.Sentry
		geminiCfg  config.Gemini
	)

	flags := serverCfg.Flags()
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, sourcesCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the risk intelligence HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			// Render-style deployments configure only PORT
			if port := os.Getenv("PORT"); port != "" && !c.IsSet("addr") {
				serverCfg.Addr = ":" + port
			}

			logger.Info("Starting prism server",
				slog.String("addr", serverCfg.Addr),
				slog.String("store", storeCfg.Type),
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			defer sentry.Flush(2 * time.Second)

			repo, err := storeCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure store")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("Failed to close repository", slog.Any("error", err))
				}
			}()

			if err := seedBaseline(ctx, repo); err != nil {
				return err
			}

			collectors, err := sourcesCfg.Configure()
			if err != nil {
				return err
			}

			var engineOpts []usecase.EngineOption
			if geminiCfg.Enabled() {
				llmClient, err := geminiCfg.Configure(ctx)
				if err != nil {
					return err
				}
				analyst, err := usecase.NewAnalyst(llmClient)
				if err != nil {
					return err
				}
				engineOpts = append(engineOpts, usecase.WithAnalyst(analyst))
			}
			if notifyCfg.SlackWebhookURL != "" {
				engineOpts = append(engineOpts,
					usecase.WithNotifier(slackx.New(notifyCfg.SlackWebhookURL)),
					usecase.WithNotifyThreshold(notifyCfg.NotifyThreshold),
				)
			}
			if notifyCfg.GCSBucket != "" {
				archiver, err := gcs.New(ctx, notifyCfg.GCSBucket)
				if err != nil {
					return goerr.Wrap(err, "failed to configure signal archiver")
				}
				defer func() {
					if err := archiver.Close(); err != nil {
						logger.Error("Failed to close archiver", slog.Any("error", err))
					}
				}()
				engineOpts = append(engineOpts, usecase.WithArchiver(archiver))
			}

			engine := usecase.NewEngine(repo, collectors, engineOpts...)
			calculator := usecase.NewCalculator(repo)

			serverOpts := []controller.Option{
				controller.WithAddr(serverCfg.Addr),
			}
			if authCfg.Enabled() {
				serverOpts = append(serverOpts,
					controller.WithJWKS(authCfg.JWKSURL, authCfg.Issuer, authCfg.Audience))
			}

			server, err := controller.NewServer(ctx, repo, engine, calculator, serverOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Refresh probabilities right away, then on the configured
			// interval.
			updateRun := func(ctx context.Context) error {
				_, err := engine.UpdateAll(ctx)
				return err
			}
			schedulerCtx, stopScheduler := context.WithCancel(ctxlog.With(context.Background(), logger))
			defer stopScheduler()

			async.Dispatch(ctx, updateRun)
			if sourcesCfg.UpdateInterval > 0 {
				async.Dispatch(ctx, func(ctx context.Context) error {
					async.RunInterval(schedulerCtx, sourcesCfg.UpdateInterval, updateRun)
					return nil
				})
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			stopScheduler()

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// seedBaseline loads the embedded risk catalog into an empty store
func seedBaseline(ctx context.Context, repo interfaces.Repository) error {
	count, err := repo.CountRisks(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to count stored risks")
	}
	if count > 0 {
		usecase.SetRisksLoadedMetric(count)
		return nil
	}

	risks, err := riskdb.Baseline(time.Now().UTC())
	if err != nil {
		return err
	}
	for _, risk := range risks {
		if err := repo.SaveRisk(ctx, risk); err != nil {
			return goerr.Wrap(err, "failed to seed baseline risk", goerr.V("risk_id", risk.ID))
		}
	}
	usecase.SetRisksLoadedMetric(len(risks))

	ctxlog.From(ctx).Info("Seeded baseline risk catalog", slog.Int("risks", len(risks)))
	return nil
}
