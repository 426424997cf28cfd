package model

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/types"
)

// Field is one declared entry of a dataset schema
type Field struct {
	Name string
	Kind types.FieldKind
}

// FieldSchema is the ordered field list returned by the dataset webhook.
// Order follows the key order of the JSON object the server sent.
type FieldSchema []Field

type fieldSpec struct {
	Type string `json:"type"`
}

// UnmarshalJSON decodes a {"name": {"type": "..."}} object while keeping key order.
// A repeated key keeps its first position and takes the last declared kind.
func (s *FieldSchema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return goerr.Wrap(err, "failed to read dataset")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return goerr.New("dataset must be a JSON object", goerr.V("token", tok))
	}

	var fields FieldSchema
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return goerr.Wrap(err, "failed to read dataset field name")
		}
		name, ok := tok.(string)
		if !ok {
			return goerr.New("dataset field name is not a string", goerr.V("token", tok))
		}

		var spec fieldSpec
		if err := dec.Decode(&spec); err != nil {
			return goerr.Wrap(err, "failed to decode dataset field", goerr.V(FieldNameKey, name))
		}

		field := Field{Name: name, Kind: types.FieldKind(spec.Type)}
		if i, dup := index[name]; dup {
			fields[i] = field
			continue
		}
		index[name] = len(fields)
		fields = append(fields, field)
	}

	if _, err := dec.Token(); err != nil {
		return goerr.Wrap(err, "failed to read end of dataset")
	}

	*s = fields
	return nil
}

// MarshalJSON encodes the schema back into its object form, in order
func (s FieldSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode field name", goerr.V(FieldNameKey, f.Name))
		}
		spec, err := json.Marshal(fieldSpec{Type: f.Kind.String()})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode field spec", goerr.V(FieldNameKey, f.Name))
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(spec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Names returns the declared field names in schema order
func (s FieldSchema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}
