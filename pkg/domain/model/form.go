package model

import (
	"maps"

	"github.com/secmon-lab/iract/pkg/domain/types"
)

// FileHandle is an uploaded image held in memory until the form is submitted or reset
type FileHandle struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the file size in bytes
func (f *FileHandle) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// SizeKB returns the file size in kilobytes
func (f *FileHandle) SizeKB() float64 {
	return float64(f.Size()) / 1024
}

// FieldValue is the current value of one form field. Kind selects which of Text
// or File is meaningful; an image field with a nil File is "absent".
type FieldValue struct {
	Kind types.FieldKind
	Text string
	File *FileHandle
}

// TextValue builds the value of a text field
func TextValue(s string) FieldValue {
	return FieldValue{Kind: types.FieldKindText, Text: s}
}

// ImageValue builds the value of an image field. A nil file clears it.
func ImageValue(file *FileHandle) FieldValue {
	return FieldValue{Kind: types.FieldKindImage, File: file}
}

// FormValue maps field names to their current values. Its key set always equals
// the renderable fields of the schema it was built from.
type FormValue map[string]FieldValue

// NewFormValue builds the initial form for schema: "" for text fields and an
// absent file for image fields. Fields of unknown kind get no entry.
func NewFormValue(schema FieldSchema) FormValue {
	form := make(FormValue, len(schema))
	for _, f := range schema {
		switch f.Kind {
		case types.FieldKindText:
			form[f.Name] = TextValue("")
		case types.FieldKindImage:
			form[f.Name] = ImageValue(nil)
		}
	}
	return form
}

// ResetForm discards every edit. It is NewFormValue under the name the UI uses.
func ResetForm(schema FieldSchema) FormValue {
	return NewFormValue(schema)
}

// SetField returns a copy of f with exactly one entry replaced. Names that are
// not part of the form, and values whose kind does not match the field, are
// ignored and f is returned unchanged.
func (f FormValue) SetField(name string, value FieldValue) FormValue {
	current, ok := f[name]
	if !ok || current.Kind != value.Kind {
		return f
	}

	next := maps.Clone(f)
	next[name] = value
	return next
}

// Clone returns a shallow copy; file contents are shared
func (f FormValue) Clone() FormValue {
	return maps.Clone(f)
}
