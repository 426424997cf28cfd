package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/iract/pkg/domain/model"
)

func TestTemplate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    model.Template
		wantErr bool
	}{
		{name: "valid", tmpl: model.Template{Name: "Spring", URL: "https://example.com"}},
		{name: "blank name", tmpl: model.Template{Name: "  ", URL: "https://example.com"}, wantErr: true},
		{name: "blank url", tmpl: model.Template{Name: "Spring", URL: "\t"}, wantErr: true},
		{name: "both blank", tmpl: model.Template{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if !tt.wantErr {
				gt.NoError(t, err)
				return
			}
			gt.Error(t, err)
			gt.B(t, errors.Is(err, model.ErrValidation)).True()
		})
	}
}

func TestSortTemplates(t *testing.T) {
	list := func() []*model.Template {
		return []*model.Template{
			{ID: 3, Name: "banana"},
			{ID: 1, Name: "cherry"},
			{ID: 2, Name: "apple"},
			{ID: 4, Name: "apple"},
		}
	}

	byName := list()
	model.SortTemplates(byName, model.TemplateOrderName)
	gt.Value(t, []int64{byName[0].ID, byName[1].ID, byName[2].ID, byName[3].ID}).Equal([]int64{2, 4, 3, 1})

	byID := list()
	model.SortTemplates(byID, model.TemplateOrderID)
	gt.Value(t, []int64{byID[0].ID, byID[1].ID, byID[2].ID, byID[3].ID}).Equal([]int64{1, 2, 3, 4})
}

func TestParseTemplateOrder(t *testing.T) {
	gt.Value(t, model.ParseTemplateOrder("id")).Equal(model.TemplateOrderID)
	gt.Value(t, model.ParseTemplateOrder("name")).Equal(model.TemplateOrderName)
	gt.Value(t, model.ParseTemplateOrder("")).Equal(model.TemplateOrderName)
	gt.Value(t, model.ParseTemplateOrder("created_at")).Equal(model.TemplateOrderName)
}

func TestFindTemplate(t *testing.T) {
	list := []*model.Template{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	found, ok := model.FindTemplate(list, 2)
	gt.B(t, ok).True()
	gt.Value(t, found.Name).Equal("b")

	_, ok = model.FindTemplate(list, 9)
	gt.B(t, ok).False()
}
