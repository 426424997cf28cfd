package interfaces

import (
	"context"

	"github.com/secmon-lab/iract/pkg/domain/model"
)

// Repository defines the interface for data persistence
type Repository interface {
	Template() TemplateRepository
	Close() error
}

// TemplateRepository persists saved templates
type TemplateRepository interface {
	// Create stores a new template and assigns its ID
	Create(ctx context.Context, template *model.Template) (*model.Template, error)

	// Get retrieves a template by ID
	Get(ctx context.Context, id int64) (*model.Template, error)

	// List retrieves all templates in the requested order
	List(ctx context.Context, order model.TemplateOrder) ([]*model.Template, error)

	// Update replaces name and URL of an existing template
	Update(ctx context.Context, template *model.Template) (*model.Template, error)

	// Delete deletes a template by ID
	Delete(ctx context.Context, id int64) error
}
