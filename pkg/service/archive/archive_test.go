package archive_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/iract/pkg/domain/interfaces"
	"github.com/secmon-lab/iract/pkg/service/archive"
)

func TestObjectName(t *testing.T) {
	now := time.Date(2026, 3, 4, 23, 0, 0, 0, time.FixedZone("JST", 9*3600))

	name := archive.ObjectName("products", "https://cdn.example.com/out/abc.png?sig=1", now)
	gt.String(t, name).HasPrefix("products/2026/03/04/")
	gt.String(t, name).HasSuffix("-abc.png")

	name = archive.ObjectName("", "https://cdn.example.com/", now)
	gt.String(t, name).HasPrefix("2026/03/04/")
	gt.String(t, name).HasSuffix("-product")
}

func TestGCSArchive(t *testing.T) {
	bucket, ok := os.LookupEnv("TEST_ARCHIVE_BUCKET")
	if !ok {
		t.Skip("TEST_ARCHIVE_BUCKET is not set")
	}

	ctx := context.Background()
	g, err := archive.New(ctx, bucket, archive.WithPrefix("test/iract"))
	gt.NoError(t, err).Required()
	defer func() { gt.NoError(t, g.Close()) }()

	err = g.Archive(ctx, "https://cdn.example.com/out.png", &interfaces.Artifact{
		Body:        io.NopCloser(bytes.NewReader([]byte("PNG"))),
		ContentType: "image/png",
	})
	gt.NoError(t, err)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := archive.New(context.Background(), "")
	gt.Error(t, err)
	gt.B(t, strings.Contains(err.Error(), "bucket")).True()
}
