package memory

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/interfaces"
	"github.com/secmon-lab/iract/pkg/domain/model"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = goerr.Wrap(model.ErrNotFound, "record not found in memory repository")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	template *templateRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		template: newTemplateRepository(),
	}
}

func (m *Memory) Template() interfaces.TemplateRepository {
	return m.template
}

func (m *Memory) Close() error {
	return nil
}
