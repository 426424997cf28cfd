package config_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/iract/pkg/cli/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		path := writeFile(t, "iract.toml", `
[webhook]
dataset_query_endpoint = "https://hooks.example/dataset"
create_endpoint = "https://hooks.example/create"
empty_image_placeholder = ""

[download]
filename = "post.png"
`)
		file, err := config.LoadFile(path)
		gt.NoError(t, err).Required()
		gt.Value(t, file.Webhook.DatasetQueryEndpoint).Equal("https://hooks.example/dataset")
		gt.Value(t, file.Webhook.CreateEndpoint).Equal("https://hooks.example/create")
		gt.Value(t, file.Webhook.EmptyImagePlaceholder != nil).Equal(true)
		gt.Value(t, *file.Webhook.EmptyImagePlaceholder).Equal("")
		gt.Value(t, file.Download.FileName).Equal("post.png")
	})

	t.Run("empty path", func(t *testing.T) {
		file, err := config.LoadFile("")
		gt.NoError(t, err).Required()
		gt.Value(t, file.Webhook.DatasetQueryEndpoint).Equal("")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadFile(filepath.Join(t.TempDir(), "none.toml"))
		gt.B(t, errors.Is(err, config.ErrConfigNotFound)).True()
	})

	t.Run("broken TOML", func(t *testing.T) {
		_, err := config.LoadFile(writeFile(t, "bad.toml", "[webhook\n"))
		gt.B(t, errors.Is(err, config.ErrInvalidConfig)).True()
	})
}

func TestWebhookMerge(t *testing.T) {
	empty := ""
	file := &config.File{Webhook: config.WebhookSection{
		DatasetQueryEndpoint:  "https://file.example/dataset",
		CreateEndpoint:        "https://file.example/create",
		EmptyImagePlaceholder: &empty,
	}}

	t.Run("flags win", func(t *testing.T) {
		w := config.NewWebhookForTest("https://flag.example/dataset", "", "none", true)
		w.Merge(file)
		dataset, create := w.Endpoints()
		gt.Value(t, dataset).Equal("https://flag.example/dataset")
		gt.Value(t, create).Equal("https://file.example/create")
		gt.Value(t, w.Placeholder()).Equal("none")
	})

	t.Run("file fills unset placeholder", func(t *testing.T) {
		w := config.NewWebhookForTest("", "", "data", false)
		w.Merge(file)
		gt.Value(t, w.Placeholder()).Equal("")
	})

	t.Run("nil file", func(t *testing.T) {
		w := config.NewWebhookForTest("", "", "data", false)
		w.Merge(nil)
		gt.Value(t, w.Placeholder()).Equal("data")
	})
}

func TestWebhookConfigure(t *testing.T) {
	_, err := config.NewWebhookForTest("", "https://x/create", "data", false).Configure()
	gt.B(t, errors.Is(err, config.ErrMissingEndpoint)).True()

	_, err = config.NewWebhookForTest("https://x/dataset", "", "data", false).Configure()
	gt.B(t, errors.Is(err, config.ErrMissingEndpoint)).True()

	client, err := config.NewWebhookForTest("https://x/dataset", "https://x/create", "data", false).Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, client != nil).Equal(true)
}

func TestRepositoryValidate(t *testing.T) {
	gt.NoError(t, config.NewRepositoryForTest("memory", "", "").Validate())
	gt.NoError(t, config.NewRepositoryForTest("firestore", "my-project", "").Validate())
	gt.NoError(t, config.NewRepositoryForTest("postgres", "", "postgres://localhost/iract").Validate())

	err := config.NewRepositoryForTest("firestore", "", "").Validate()
	gt.B(t, errors.Is(err, config.ErrInvalidConfig)).True()

	err = config.NewRepositoryForTest("postgres", "", "").Validate()
	gt.B(t, errors.Is(err, config.ErrInvalidConfig)).True()

	err = config.NewRepositoryForTest("mysql", "", "").Validate()
	gt.B(t, errors.Is(err, config.ErrInvalidBackend)).True()
}

func TestRepositoryCollectionPrefix(t *testing.T) {
	withPrefix := config.NewFirestoreRepositoryForTest("my-project", "staging")
	gt.Value(t, withPrefix.CollectionPrefix()).Equal("staging")
	gt.Number(t, withPrefix.FirestoreOptionCount()).Equal(1)

	plain := config.NewFirestoreRepositoryForTest("my-project", "")
	gt.Number(t, plain.FirestoreOptionCount()).Equal(0)
}

func TestRepositoryConfigureMemory(t *testing.T) {
	repo, err := config.NewRepositoryForTest("memory", "", "").Configure(context.Background())
	gt.NoError(t, err).Required()
	defer func() { gt.NoError(t, repo.Close()) }()
	gt.Value(t, repo.Template() != nil).Equal(true)
}

func TestLogger(t *testing.T) {
	t.Run("json output redacts dsn", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("info", "json").NewLogger(&buf)
		gt.NoError(t, err).Required()

		logger.Debug("hidden")
		logger.Info("connecting", "dsn", "postgres://user:pass@db/iract")

		var record map[string]any
		gt.NoError(t, json.Unmarshal(buf.Bytes(), &record)).Required()
		gt.Value(t, record["msg"]).Equal("connecting")
		gt.String(t, buf.String()).NotContains("user:pass")
		gt.String(t, buf.String()).NotContains("hidden")
	})

	t.Run("console output", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("debug", "console").NewLogger(&buf)
		gt.NoError(t, err).Required()
		logger.Debug("visible")
		gt.String(t, buf.String()).Contains("visible")
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "json").NewLogger(&bytes.Buffer{})
		gt.Error(t, err)
		_, err = config.NewLoggerForTest("info", "xml").NewLogger(&bytes.Buffer{})
		gt.Error(t, err)
	})
}

func TestDownloadFileName(t *testing.T) {
	gt.Value(t, config.NewDownloadForTest("").FileName()).Equal("product.png")

	d := config.NewDownloadForTest("")
	d.Merge(&config.File{Download: config.DownloadSection{FileName: "post.png"}})
	gt.Value(t, d.FileName()).Equal("post.png")

	d = config.NewDownloadForTest("flag.png")
	d.Merge(&config.File{Download: config.DownloadSection{FileName: "post.png"}})
	gt.Value(t, d.FileName()).Equal("flag.png")
}

func TestLoadDotEnv(t *testing.T) {
	const key = "IRACT_TEST_DOTENV_VALUE"
	path := writeFile(t, ".env", key+"=from-file\n")
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	gt.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))).Required()
	gt.NoError(t, config.LoadDotEnv(path)).Required()
	gt.Value(t, os.Getenv(key)).Equal("from-file")

	t.Setenv(key, "from-env")
	gt.NoError(t, config.LoadDotEnv(path)).Required()
	gt.Value(t, os.Getenv(key)).Equal("from-env")
}
