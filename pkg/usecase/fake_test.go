package usecase_test

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/secmon-lab/iract/pkg/domain/interfaces"
	"github.com/secmon-lab/iract/pkg/domain/model"
)

type fakeDataset struct {
	schemas map[string]model.FieldSchema
	err     error
	// during runs inside FetchDataset, before the response is returned
	during func()
	calls  []string
}

func (f *fakeDataset) FetchDataset(ctx context.Context, templateURL string) (model.FieldSchema, error) {
	f.calls = append(f.calls, templateURL)
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.schemas[templateURL], nil
}

type submitCall struct {
	brandURL string
	form     model.FormValue
	schema   model.FieldSchema
}

type fakeGenerator struct {
	mu          sync.Mutex
	result      *model.SubmissionResult
	submitErr   error
	downloadErr error
	during      func()
	submits     []submitCall
	downloads   []string
}

func (f *fakeGenerator) Submit(ctx context.Context, brandURL string, form model.FormValue, schema model.FieldSchema) (*model.SubmissionResult, error) {
	f.mu.Lock()
	f.submits = append(f.submits, submitCall{brandURL: brandURL, form: form, schema: schema})
	f.mu.Unlock()
	if f.during != nil {
		f.during()
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.result, nil
}

func (f *fakeGenerator) Download(ctx context.Context, productURL string) (*interfaces.Artifact, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, productURL)
	f.mu.Unlock()
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return &interfaces.Artifact{
		Body:          io.NopCloser(bytes.NewReader([]byte("PNG"))),
		ContentType:   "image/png",
		ContentLength: 3,
	}, nil
}

type fakeArchive struct {
	mu       sync.Mutex
	archived map[string][]byte
}

func (f *fakeArchive) Archive(ctx context.Context, productURL string, artifact *interfaces.Artifact) error {
	data, err := io.ReadAll(artifact.Body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.archived == nil {
		f.archived = map[string][]byte{}
	}
	f.archived[productURL] = data
	return nil
}
