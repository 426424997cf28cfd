package config

import (
	"github.com/urfave/cli/v3"
)

// DefaultDownloadFileName is the attachment name of a downloaded image
const DefaultDownloadFileName = "product.png"

// Download holds CLI flags for the result download
type Download struct {
	fileName string
}

// Flags returns CLI flags for download configuration
func (x *Download) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "download-filename",
			Usage:       "File name offered when downloading a generated image",
			Sources:     cli.EnvVars("IRACT_DOWNLOAD_FILENAME"),
			Destination: &x.fileName,
		},
	}
}

// Merge fills values not given by flags from the config file
func (x *Download) Merge(file *File) {
	if x.fileName == "" && file != nil {
		x.fileName = file.Download.FileName
	}
}

// FileName returns the configured name, or the default
func (x *Download) FileName() string {
	if x.fileName == "" {
		return DefaultDownloadFileName
	}
	return x.fileName
}
