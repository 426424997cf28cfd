package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/service/webhook"
	"github.com/urfave/cli/v3"
)

// Webhook holds CLI flags for the dataset and generation webhooks
type Webhook struct {
	datasetEndpoint string
	createEndpoint  string
	placeholder     string
	placeholderSet  bool
}

// Flags returns CLI flags for webhook configuration
func (w *Webhook) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dataset-query-endpoint",
			Category:    "Webhook",
			Usage:       "URL queried with ?brandUrl= for the field schema of a template",
			Sources:     cli.EnvVars("IRACT_DATASET_QUERY_ENDPOINT"),
			Destination: &w.datasetEndpoint,
		},
		&cli.StringFlag{
			Name:        "create-endpoint",
			Category:    "Webhook",
			Usage:       "URL the filled form is posted to as multipart",
			Sources:     cli.EnvVars("IRACT_CREATE_ENDPOINT"),
			Destination: &w.createEndpoint,
		},
		&cli.StringFlag{
			Name:     "empty-image-placeholder",
			Category: "Webhook",
			Usage:    "Value sent for image fields without a file",
			Value:    webhook.DefaultEmptyImagePlaceholder,
			Sources:  cli.EnvVars("IRACT_EMPTY_IMAGE_PLACEHOLDER"),
			Action: func(_ context.Context, _ *cli.Command, v string) error {
				w.placeholderSet = true
				return nil
			},
			Destination: &w.placeholder,
		},
	}
}

// LogValue implements slog.LogValuer
func (w Webhook) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dataset_query_endpoint", w.datasetEndpoint),
		slog.String("create_endpoint", w.createEndpoint),
		slog.String("empty_image_placeholder", w.placeholder),
	)
}

// Merge fills values not given by flags from the config file
func (w *Webhook) Merge(file *File) {
	if file == nil {
		return
	}
	if w.datasetEndpoint == "" {
		w.datasetEndpoint = file.Webhook.DatasetQueryEndpoint
	}
	if w.createEndpoint == "" {
		w.createEndpoint = file.Webhook.CreateEndpoint
	}
	if !w.placeholderSet && file.Webhook.EmptyImagePlaceholder != nil {
		w.placeholder = *file.Webhook.EmptyImagePlaceholder
	}
}

// Configure builds the webhook client
func (w *Webhook) Configure() (*webhook.Client, error) {
	if w.datasetEndpoint == "" {
		return nil, goerr.Wrap(ErrMissingEndpoint, "dataset-query-endpoint is required", goerr.V(FlagKey, "dataset-query-endpoint"))
	}
	if w.createEndpoint == "" {
		return nil, goerr.Wrap(ErrMissingEndpoint, "create-endpoint is required", goerr.V(FlagKey, "create-endpoint"))
	}

	client, err := webhook.New(w.datasetEndpoint, w.createEndpoint,
		webhook.WithEmptyImagePlaceholder(w.placeholder),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create webhook client")
	}
	return client, nil
}
