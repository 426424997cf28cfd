package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// File is the optional TOML configuration file. Values given by flags or
// environment variables take precedence over it.
type File struct {
	Webhook  WebhookSection  `toml:"webhook"`
	Download DownloadSection `toml:"download"`
}

// WebhookSection configures the dataset and generation webhooks
type WebhookSection struct {
	DatasetQueryEndpoint string `toml:"dataset_query_endpoint"`
	CreateEndpoint       string `toml:"create_endpoint"`
	// EmptyImagePlaceholder is a pointer so that an explicit "" can be told
	// apart from an omitted key
	EmptyImagePlaceholder *string `toml:"empty_image_placeholder"`
}

// DownloadSection configures the result download
type DownloadSection struct {
	FileName string `toml:"filename"`
}

// LoadFile reads a TOML configuration file. An empty path yields an empty File.
func LoadFile(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var file File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("cause", err.Error()))
	}

	return &file, nil
}
