package cli

import (
	"context"

	"github.com/secmon-lab/iract/pkg/cli/config"
	"github.com/secmon-lab/iract/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var closer func()

	// variables from .env are visible to every flag source below
	if err := config.LoadDotEnv(); err != nil {
		logging.Default().Error("failed to load .env", "error", err)
		return err
	}

	app := &cli.Command{
		Name:    "iract",
		Usage:   "IRACT Post Creator: fill template forms and generate post images",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Info("Starting iract", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(version),
			cmdMigrate(),
			cmdTemplate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
