package model

import (
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Template is a saved generation template: a display name and the URL the
// dataset webhook understands as "brandUrl".
type Template struct {
	ID        int64
	Name      string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks that the template has a non-blank name and URL
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return goerr.Wrap(ErrValidation, "template name is required",
			goerr.V(TemplateIDKey, t.ID),
			goerr.V(DetailKey, "Template name is required"))
	}
	if strings.TrimSpace(t.URL) == "" {
		return goerr.Wrap(ErrValidation, "template URL is required",
			goerr.V(TemplateIDKey, t.ID),
			goerr.V(DetailKey, "Template URL is required"))
	}
	return nil
}

// TemplateOrder selects the sort key of a template listing
type TemplateOrder string

const (
	TemplateOrderName TemplateOrder = "name"
	TemplateOrderID   TemplateOrder = "id"
)

// ParseTemplateOrder parses s, falling back to name ordering for unknown or empty input
func ParseTemplateOrder(s string) TemplateOrder {
	if TemplateOrder(s) == TemplateOrderID {
		return TemplateOrderID
	}
	return TemplateOrderName
}

// SortTemplates sorts templates in place, ascending. Name ties are broken by ID.
func SortTemplates(templates []*Template, order TemplateOrder) {
	slices.SortStableFunc(templates, func(a, b *Template) int {
		if order == TemplateOrderName {
			if c := strings.Compare(a.Name, b.Name); c != 0 {
				return c
			}
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}

// FindTemplate returns the template with the given ID
func FindTemplate(templates []*Template, id int64) (*Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}
