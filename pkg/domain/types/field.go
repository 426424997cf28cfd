package types

// FieldKind is the declared kind of a dataset field
type FieldKind string

const (
	FieldKindText  FieldKind = "text"
	FieldKindImage FieldKind = "image"
)

// AllFieldKinds returns all field kinds the form knows how to render
func AllFieldKinds() []FieldKind {
	return []FieldKind{
		FieldKindText,
		FieldKindImage,
	}
}

// IsValid checks if the field kind is one the form can render
func (k FieldKind) IsValid() bool {
	switch k {
	case FieldKindText,
		FieldKindImage:
		return true
	default:
		return false
	}
}

// String returns the string representation of the field kind
func (k FieldKind) String() string {
	return string(k)
}
