package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Active(t *testing.T) {
	tests := []struct {
		name      string
		isDeleted any
		present   bool
		want      bool
	}{
		{"Absent", nil, false, true},
		{"Null", nil, true, true},
		{"False", false, true, true},
		{"True", true, true, false},
		{"Zero", int64(0), true, true},
		{"One", int64(1), true, false},
		{"Float Zero", 0.0, true, true},
		{"JSON Number", json.Number("1"), true, false},
		{"Empty String", "", true, true},
		{"String True", "true", true, false},
		{"String False", "false", true, false},
		{"Empty List", []any{}, true, true},
		{"List", []any{"x"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{"id": int64(1)}
			if tt.present {
				r[FieldIsDeleted] = tt.isDeleted
			}
			assert.Equal(t, tt.want, r.Active())
		})
	}
}
