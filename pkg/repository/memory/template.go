package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/model"
)

type templateRepository struct {
	mu        sync.RWMutex
	lastID    int64
	templates map[int64]*model.Template
}

func newTemplateRepository() *templateRepository {
	return &templateRepository{
		templates: make(map[int64]*model.Template),
	}
}

func copyTemplate(t *model.Template) *model.Template {
	copied := *t
	return &copied
}

func (r *templateRepository) Create(ctx context.Context, t *model.Template) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	now := time.Now().UTC()
	created := copyTemplate(t)
	created.ID = r.lastID
	created.CreatedAt = now
	created.UpdatedAt = now

	r.templates[created.ID] = created
	return copyTemplate(created), nil
}

func (r *templateRepository) Get(ctx context.Context, id int64) (*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.templates[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "template not found", goerr.V(model.TemplateIDKey, id))
	}

	return copyTemplate(t), nil
}

func (r *templateRepository) List(ctx context.Context, order model.TemplateOrder) ([]*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]*model.Template, 0, len(r.templates))
	for _, t := range r.templates {
		templates = append(templates, copyTemplate(t))
	}
	model.SortTemplates(templates, order)

	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, t *model.Template) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.templates[t.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "template not found", goerr.V(model.TemplateIDKey, t.ID))
	}

	updated := copyTemplate(t)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.templates[updated.ID] = updated
	return copyTemplate(updated), nil
}

func (r *templateRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[id]; !exists {
		return goerr.Wrap(ErrNotFound, "template not found", goerr.V(model.TemplateIDKey, id))
	}

	delete(r.templates, id)
	return nil
}
