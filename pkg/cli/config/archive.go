package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/service/archive"
	"github.com/secmon-lab/iract/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Archive holds CLI flags for copying generated images to Cloud Storage
type Archive struct {
	bucket string
	prefix string
}

// Flags returns CLI flags for archive configuration
func (x *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Category:    "Archive",
			Usage:       "Cloud Storage bucket receiving a copy of each generated image",
			Sources:     cli.EnvVars("IRACT_ARCHIVE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Category:    "Archive",
			Usage:       "Object name prefix in the archive bucket",
			Value:       "products",
			Sources:     cli.EnvVars("IRACT_ARCHIVE_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Archive) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

// Enabled reports whether a bucket is configured
func (x *Archive) Enabled() bool {
	return x.bucket != ""
}

// Configure creates the archive. It returns nil when no bucket is set.
func (x *Archive) Configure(ctx context.Context) (*archive.GCS, error) {
	if !x.Enabled() {
		return nil, nil
	}

	gcs, err := archive.New(ctx, x.bucket, archive.WithPrefix(x.prefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize archive")
	}
	logging.Default().Info("Archiving generated images", "bucket", x.bucket, "prefix", x.prefix)
	return gcs, nil
}
