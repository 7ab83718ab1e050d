package conv

import (
	"reflect"
	"testing"
)

func TestSliceAnyToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, nil},
		{"strings", []any{"a", "b"}, []string{"a", "b"}},
		{"numbers", []any{"a", 42, 7.0}, []string{"a", "42", "7"}},
		{"typed", []string{"x"}, []string{"x"}},
		{"unsupported elements skipped", []any{"a", true}, []string{"a"}},
		{"not a slice", "a", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SliceAnyToString(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SliceAnyToString() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"expr": "item.id == 'a'", "n": 3}
	if got := ConfigGet(m, "expr", ""); got != "item.id == 'a'" {
		t.Errorf("expr = %q", got)
	}
	if got := ConfigGet(m, "n", "default"); got != "default" {
		t.Errorf("type mismatch should return default, got %q", got)
	}
	if got := ConfigGet[string](nil, "expr", "d"); got != "d" {
		t.Errorf("nil map should return default, got %q", got)
	}
}
