package view

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/domain/types"
)

// Form input name prefixes. Field names come from the dataset webhook, so
// they are namespaced to keep them apart from the control inputs.
const (
	FieldInputPrefix = "field:"
	ClearInputPrefix = "clear:"
)

// Control is one rendered form input
type Control struct {
	Name        string
	Kind        types.FieldKind
	InputName   string
	ClearName   string
	Value       string
	Placeholder string
	Preview     *Preview
}

// IsText reports whether the control renders as a text input
func (c Control) IsText() bool { return c.Kind == types.FieldKindText }

// IsImage reports whether the control renders as a file picker
func (c Control) IsImage() bool { return c.Kind == types.FieldKindImage }

// Preview describes a selected image file
type Preview struct {
	FileName string
	Size     string
	// Thumbnail is empty when the bytes are not a raster image
	Thumbnail template.URL
}

// BuildControls maps the schema to controls in schema order. Fields of unknown
// kind produce no control.
func BuildControls(schema model.FieldSchema, form model.FormValue) []Control {
	controls := make([]Control, 0, len(schema))
	for _, field := range schema {
		value := form[field.Name]

		switch field.Kind {
		case types.FieldKindText:
			controls = append(controls, Control{
				Name:        field.Name,
				Kind:        field.Kind,
				InputName:   FieldInputPrefix + field.Name,
				Value:       value.Text,
				Placeholder: fmt.Sprintf("Enter %s...", field.Name),
			})

		case types.FieldKindImage:
			controls = append(controls, Control{
				Name:      field.Name,
				Kind:      field.Kind,
				InputName: FieldInputPrefix + field.Name,
				ClearName: ClearInputPrefix + field.Name,
				Preview:   buildPreview(value.File),
			})
		}
	}
	return controls
}

var thumbnailTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

func buildPreview(file *model.FileHandle) *Preview {
	if file == nil {
		return nil
	}

	p := &Preview{
		FileName: file.Name,
		Size:     FormatSize(file),
	}

	// content type is sniffed rather than trusted from the upload
	contentType := http.DetectContentType(file.Data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if thumbnailTypes[contentType] {
		p.Thumbnail = template.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(file.Data))
	}
	return p
}

// FormatSize renders a file size in kilobytes with two decimals
func FormatSize(file *model.FileHandle) string {
	return fmt.Sprintf("%.2f KB", file.SizeKB())
}
