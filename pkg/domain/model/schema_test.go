package model_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/domain/types"
)

func TestFieldSchema_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    model.FieldSchema
		wantErr bool
	}{
		{
			name:  "keeps server order",
			input: `{"title":{"type":"text"},"logo":{"type":"image"},"subtitle":{"type":"text"}}`,
			want: model.FieldSchema{
				{Name: "title", Kind: types.FieldKindText},
				{Name: "logo", Kind: types.FieldKindImage},
				{Name: "subtitle", Kind: types.FieldKindText},
			},
		},
		{
			name:  "order is not alphabetical",
			input: `{"z":{"type":"text"},"a":{"type":"text"}}`,
			want: model.FieldSchema{
				{Name: "z", Kind: types.FieldKindText},
				{Name: "a", Kind: types.FieldKindText},
			},
		},
		{
			name:  "unknown kind is preserved",
			input: `{"clip":{"type":"video"}}`,
			want: model.FieldSchema{
				{Name: "clip", Kind: types.FieldKind("video")},
			},
		},
		{
			name:  "duplicate key keeps first position and last kind",
			input: `{"a":{"type":"text"},"b":{"type":"text"},"a":{"type":"image"}}`,
			want: model.FieldSchema{
				{Name: "a", Kind: types.FieldKindImage},
				{Name: "b", Kind: types.FieldKindText},
			},
		},
		{
			name:  "extra properties in a field are ignored",
			input: `{"a":{"type":"text","maxLength":20}}`,
			want: model.FieldSchema{
				{Name: "a", Kind: types.FieldKindText},
			},
		},
		{
			name:  "empty object",
			input: `{}`,
			want:  nil,
		},
		{
			name:    "array is rejected",
			input:   `[{"type":"text"}]`,
			wantErr: true,
		},
		{
			name:    "string is rejected",
			input:   `"text"`,
			wantErr: true,
		},
		{
			name:    "field spec must be an object",
			input:   `{"a":"text"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.FieldSchema
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("schema mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldSchema_MarshalJSONKeepsOrder(t *testing.T) {
	schema := model.FieldSchema{
		{Name: "z", Kind: types.FieldKindImage},
		{Name: "a", Kind: types.FieldKindText},
	}

	data, err := json.Marshal(schema)
	gt.NoError(t, err).Required()
	gt.String(t, string(data)).Equal(`{"z":{"type":"image"},"a":{"type":"text"}}`)
}

func TestFieldSchema_Names(t *testing.T) {
	schema := model.FieldSchema{
		{Name: "title", Kind: types.FieldKindText},
		{Name: "logo", Kind: types.FieldKindImage},
	}

	gt.A(t, schema.Names()).Equal([]string{"title", "logo"})
}
