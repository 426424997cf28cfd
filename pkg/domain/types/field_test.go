package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/iract/pkg/domain/types"
)

func TestFieldKind_IsValid(t *testing.T) {
	tests := []struct {
		name string
		kind types.FieldKind
		want bool
	}{
		{
			name: "valid text",
			kind: types.FieldKindText,
			want: true,
		},
		{
			name: "valid image",
			kind: types.FieldKindImage,
			want: true,
		},
		{
			name: "unknown kind",
			kind: types.FieldKind("video"),
			want: false,
		},
		{
			name: "empty kind",
			kind: types.FieldKind(""),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want {
				gt.B(t, tt.kind.IsValid()).True()
			} else {
				gt.B(t, tt.kind.IsValid()).False()
			}
		})
	}
}

func TestAllFieldKinds(t *testing.T) {
	kinds := types.AllFieldKinds()
	gt.A(t, kinds).Length(2)
	for _, k := range kinds {
		gt.B(t, k.IsValid()).True()
	}
}
