package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/iract/pkg/cli/config"
	httpctrl "github.com/secmon-lab/iract/pkg/controller/http"
	"github.com/secmon-lab/iract/pkg/usecase"
	"github.com/secmon-lab/iract/pkg/utils/async"
	"github.com/secmon-lab/iract/pkg/utils/logging"
)

// sessionSweepInterval is how often expired browser sessions are dropped
const sessionSweepInterval = 10 * time.Minute

func cmdServe(version string) *cli.Command {
	var addr string
	var configPath string
	var secureCookie bool
	var maxUploadSize int64
	var repoCfg config.Repository
	var webhookCfg config.Webhook
	var downloadCfg config.Download
	var archiveCfg config.Archive
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("IRACT_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML configuration file",
			Sources:     cli.EnvVars("IRACT_CONFIG"),
			Destination: &configPath,
		},
		&cli.BoolFlag{
			Name:        "secure-cookie",
			Usage:       "Mark the session cookie Secure (serve behind HTTPS)",
			Sources:     cli.EnvVars("IRACT_SECURE_COOKIE"),
			Destination: &secureCookie,
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Maximum size in bytes of one form post, including uploaded images",
			Value:       httpctrl.DefaultMaxUploadSize,
			Sources:     cli.EnvVars("IRACT_MAX_UPLOAD_SIZE"),
			Destination: &maxUploadSize,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, webhookCfg.Flags()...)
	flags = append(flags, downloadCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			file, err := config.LoadFile(configPath)
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration file")
			}
			webhookCfg.Merge(file)
			downloadCfg.Merge(file)

			logging.Default().Info("Serve configuration",
				"repository", repoCfg,
				"webhook", webhookCfg,
				"archive", archiveCfg,
				"sentry", sentryCfg,
			)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			client, err := webhookCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure webhooks")
			}

			sessions := usecase.NewSessionStore(usecase.DefaultSessionTTL)
			ucOpts := []usecase.Option{
				usecase.WithSessionStore(sessions),
			}

			gcs, err := archiveCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if gcs != nil {
				defer func() {
					if err := gcs.Close(); err != nil {
						logging.Default().Error("failed to close archive", "error", err.Error())
					}
				}()
				ucOpts = append(ucOpts, usecase.WithArchive(gcs))
			}

			uc := usecase.New(repo, client, client, ucOpts...)

			// Create HTTP server
			httpHandler, err := httpctrl.New(uc,
				httpctrl.WithDownloadFileName(downloadCfg.FileName()),
				httpctrl.WithSecureCookie(secureCookie),
				httpctrl.WithMaxUploadSize(maxUploadSize),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Drop idle sessions in the background
			sweepCtx, stopSweep := context.WithCancel(ctx)
			defer stopSweep()
			go sweepSessions(sweepCtx, sessions)

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				// Let pending archive uploads finish before the clients close
				if !async.Wait(shutdownCtx) {
					logging.Default().Warn("Background tasks did not finish before shutdown")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

func sweepSessions(ctx context.Context, sessions *usecase.SessionStore) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logging.Default().Debug("expired sessions removed", "count", n)
			}
		}
	}
}
