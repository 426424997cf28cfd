package view

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/domain/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexData is rendered by the main page
type IndexData struct {
	Templates          []*model.Template
	SelectedTemplateID int64
	State              types.SessionState
	Busy               bool
	Loading            bool
	Submitting         bool
	HasSchema          bool
	Controls           []Control
	Result             *model.SubmissionResult
	Error              string
}

// NewIndexData projects a session snapshot onto the main page
func NewIndexData(v model.SessionView) IndexData {
	return IndexData{
		Templates:          v.Templates,
		SelectedTemplateID: v.SelectedTemplateID,
		State:              v.State,
		Busy:               v.State.Busy(),
		Loading:            v.State == types.SessionStateSchemaLoading,
		Submitting:         v.State == types.SessionStateSubmitting,
		HasSchema:          v.HasSchema(),
		Controls:           BuildControls(v.Schema, v.Form),
		Result:             v.Result,
		Error:              v.Error,
	}
}

// TemplatesData is rendered by the template management page
type TemplatesData struct {
	Templates []*model.Template
	Error     string
	// Draft keeps the rejected input of a failed create
	DraftName string
	DraftURL  string
}

// Renderer executes the embedded page templates
type Renderer struct {
	index     *template.Template
	templates *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	index, err := template.ParseFS(templateFS, "templates/layout.html", "templates/index.html")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse index template")
	}
	templates, err := template.ParseFS(templateFS, "templates/layout.html", "templates/templates.html")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse templates page")
	}

	return &Renderer{index: index, templates: templates}, nil
}

// Index renders the main page. Output is buffered so a template error never
// leaves a half-written page.
func (r *Renderer) Index(w io.Writer, data IndexData) error {
	return execute(w, r.index, data)
}

// Templates renders the template management page
func (r *Renderer) Templates(w io.Writer, data TemplatesData) error {
	return execute(w, r.templates, data)
}

func execute(w io.Writer, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return goerr.Wrap(err, "failed to render page", goerr.V("template", t.Name()))
	}
	if _, err := buf.WriteTo(w); err != nil {
		return goerr.Wrap(err, "failed to write page")
	}
	return nil
}
