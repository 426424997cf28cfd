package usecase

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/secmon-lab/iract/pkg/domain/interfaces"
	"github.com/secmon-lab/iract/pkg/domain/model"
)

// TemplateUseCase manages saved templates
type TemplateUseCase struct {
	repo   interfaces.Repository
	policy *bluemonday.Policy
}

func NewTemplateUseCase(repo interfaces.Repository) *TemplateUseCase {
	return &TemplateUseCase{
		repo:   repo,
		policy: bluemonday.StrictPolicy(),
	}
}

// normalize trims both fields and strips markup from the name. The sanitizer
// escapes entities, which are decoded again since rendering escapes on output.
func (uc *TemplateUseCase) normalize(name, url string) (string, string) {
	name = strings.TrimSpace(html.UnescapeString(uc.policy.Sanitize(name)))
	return name, strings.TrimSpace(url)
}

// storeError tags a repository failure as ErrStore. The repository error stays
// in the chain, so ErrNotFound and context errors remain reachable.
func storeError(err error, msg string, id int64) error {
	detail := err.Error()
	if errors.Is(err, model.ErrNotFound) {
		detail = "Template not found"
	}
	return goerr.Wrap(errors.Join(model.ErrStore, err), msg,
		goerr.V(model.TemplateIDKey, id),
		goerr.V(model.DetailKey, detail))
}

// List returns every template in the given order
func (uc *TemplateUseCase) List(ctx context.Context, order model.TemplateOrder) ([]*model.Template, error) {
	templates, err := uc.repo.Template().List(ctx, order)
	if err != nil {
		return nil, storeError(err, "failed to list templates", 0)
	}
	return templates, nil
}

// Get returns one template
func (uc *TemplateUseCase) Get(ctx context.Context, id int64) (*model.Template, error) {
	t, err := uc.repo.Template().Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to get template", id)
	}
	return t, nil
}

// Create validates and stores a new template
func (uc *TemplateUseCase) Create(ctx context.Context, name, url string) (*model.Template, error) {
	name, url = uc.normalize(name, url)
	t := &model.Template{Name: name, URL: url}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.repo.Template().Create(ctx, t)
	if err != nil {
		return nil, storeError(err, "failed to create template", 0)
	}
	return created, nil
}

// Update replaces name and URL of an existing template
func (uc *TemplateUseCase) Update(ctx context.Context, id int64, name, url string) (*model.Template, error) {
	name, url = uc.normalize(name, url)
	t := &model.Template{ID: id, Name: name, URL: url}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Template().Update(ctx, t)
	if err != nil {
		return nil, storeError(err, "failed to update template", id)
	}
	return updated, nil
}

// Delete removes a template
func (uc *TemplateUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.repo.Template().Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete template", id)
	}
	return nil
}
