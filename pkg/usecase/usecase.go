package usecase

import (
	"github.com/secmon-lab/iract/pkg/domain/interfaces"
)

type UseCases struct {
	repo      interfaces.Repository
	dataset   interfaces.DatasetClient
	generator interfaces.GenerationClient
	archive   interfaces.ArtifactArchive
	sessions  *SessionStore

	Template *TemplateUseCase
	Post     *PostUseCase
}

type Option func(*UseCases)

// WithArchive enables copying every generated artifact into archive
func WithArchive(archive interfaces.ArtifactArchive) Option {
	return func(uc *UseCases) {
		uc.archive = archive
	}
}

// WithSessionStore replaces the default in-memory session store
func WithSessionStore(store *SessionStore) Option {
	return func(uc *UseCases) {
		uc.sessions = store
	}
}

func New(repo interfaces.Repository, dataset interfaces.DatasetClient, generator interfaces.GenerationClient, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		dataset:   dataset,
		generator: generator,
	}

	for _, opt := range opts {
		opt(uc)
	}
	if uc.sessions == nil {
		uc.sessions = NewSessionStore(DefaultSessionTTL)
	}

	uc.Template = NewTemplateUseCase(repo)
	uc.Post = NewPostUseCase(repo, dataset, generator, uc.sessions, uc.archive)

	return uc
}
