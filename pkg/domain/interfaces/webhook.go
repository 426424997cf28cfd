package interfaces

import (
	"context"
	"io"

	"github.com/secmon-lab/iract/pkg/domain/model"
)

// DatasetClient looks up the field schema of a template
type DatasetClient interface {
	FetchDataset(ctx context.Context, templateURL string) (model.FieldSchema, error)
}

// GenerationClient submits a filled form and retrieves the generated artifact
type GenerationClient interface {
	Submit(ctx context.Context, brandURL string, form model.FormValue, schema model.FieldSchema) (*model.SubmissionResult, error)
	Download(ctx context.Context, productURL string) (*Artifact, error)
}

// Artifact is a downloaded result. The caller must close Body.
type Artifact struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// ArtifactArchive keeps a copy of generated artifacts
type ArtifactArchive interface {
	Archive(ctx context.Context, productURL string, artifact *Artifact) error
}
