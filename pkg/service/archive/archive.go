package archive

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/interfaces"
	"github.com/secmon-lab/iract/pkg/utils/logging"
	"github.com/secmon-lab/iract/pkg/utils/safe"
)

// GCS copies generated artifacts into a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

var _ interfaces.ArtifactArchive = &GCS{}

// Option configures GCS
type Option func(*GCS)

// WithPrefix sets the object name prefix
func WithPrefix(prefix string) Option {
	return func(g *GCS) {
		g.prefix = strings.Trim(prefix, "/")
	}
}

// WithClock overrides the time source used in object names
func WithClock(now func() time.Time) Option {
	return func(g *GCS) {
		g.now = now
	}
}

// New creates a GCS archive for bucket using application default credentials
func New(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("archive bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	g := &GCS{
		client: client,
		bucket: bucket,
		prefix: "products",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Archive uploads the artifact body. It does not close the body.
func (g *GCS) Archive(ctx context.Context, productURL string, artifact *interfaces.Artifact) error {
	name := ObjectName(g.prefix, productURL, g.now())

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = artifact.ContentType
	w.Metadata = map[string]string{"product_url": productURL}

	if _, err := io.Copy(w, artifact.Body); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to upload artifact",
			goerr.V("bucket", g.bucket),
			goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize artifact upload",
			goerr.V("bucket", g.bucket),
			goerr.V("object", name))
	}

	logging.From(ctx).Info("artifact archived", "bucket", g.bucket, "object", name)
	return nil
}

// Close releases the storage client
func (g *GCS) Close() error {
	return g.client.Close()
}

// ObjectName builds "<prefix>/<yyyy>/<mm>/<dd>/<uuid>-<basename>" for a product URL
func ObjectName(prefix, productURL string, now time.Time) string {
	base := "product"
	if u, err := url.Parse(productURL); err == nil {
		if b := path.Base(u.Path); b != "." && b != "/" && b != "" {
			base = b
		}
	}

	name := path.Join(now.UTC().Format("2006/01/02"), uuid.NewString()+"-"+base)
	if prefix != "" {
		name = prefix + "/" + name
	}
	return name
}
