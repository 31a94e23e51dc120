package reference

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  []string
	}{
		{"single code", "840539006", []string{"840539006"}},
		{"comma list", " 840539006, 772828001 ,", []string{"840539006", "772828001"}},
		{"comma beats pipe", "a|b,c", []string{"a|b", "c"}},
		{"pipe beats semicolon", "a;b|c", []string{"a;b", "c"}},
		{"semicolon", "a; b", []string{"a", "b"}},
		{"whitespace only", "   ", []string{}},
		{"empty string", "", []string{}},
		{"int", 840539006, []string{"840539006"}},
		{"int64", int64(12345), []string{"12345"}},
		{"whole float", float64(840539006), []string{"840539006"}},
		{"fractional float", 1.5, []string{"1.5"}},
		{"json number", json.Number("840539006"), []string{"840539006"}},
		{"string slice", []string{" a ", "", "b"}, []string{"a", "b"}},
		{"int slice", []int{1, 2}, []string{"1", "2"}},
		{"mixed list", []interface{}{"dxtc", json.Number("12"), 3.0, nil, "  "}, []string{"dxtc", "12", "3"}},
		{"empty list", []interface{}{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%#v) = %#v, want %#v", tt.input, got, tt.want)
			}
			for _, s := range got {
				if strings.TrimSpace(s) == "" || s != strings.TrimSpace(s) {
					t.Errorf("element %q is empty or untrimmed", s)
				}
			}
		})
	}
}

func TestNormalize_UnsupportedInputType(t *testing.T) {
	for _, input := range []interface{}{
		nil,
		true,
		map[string]interface{}{"code": "840539006"},
		[]interface{}{"ok", map[string]interface{}{}},
		struct{}{},
	} {
		if _, err := Normalize(input); !errors.Is(err, ErrUnsupportedInputType) {
			t.Errorf("Normalize(%#v): expected ErrUnsupportedInputType, got %v", input, err)
		}
	}
}

func TestRequireSingleCode(t *testing.T) {
	got, err := RequireSingleCode(" 840539006 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "840539006" {
		t.Errorf("expected [840539006], got %v", got)
	}
}

func TestRequireSingleCode_CountMismatch(t *testing.T) {
	tests := []struct {
		input interface{}
		count int
	}{
		{"12345,67890", 2},
		{"", 0},
		{[]interface{}{"1", "2", "3"}, 3},
	}
	for _, tt := range tests {
		_, err := RequireSingleCode(tt.input)
		if !errors.Is(err, ErrAmbiguousCodeCount) {
			t.Fatalf("RequireSingleCode(%#v): expected ErrAmbiguousCodeCount, got %v", tt.input, err)
		}
		var cce *CodeCountError
		if !errors.As(err, &cce) || cce.Count != tt.count {
			t.Errorf("expected count %d, got %v", tt.count, err)
		}
	}

	_, err := RequireSingleCode("12345,67890")
	if !strings.Contains(err.Error(), "2") {
		t.Errorf("expected message to mention 2, got %q", err.Error())
	}
	if err.Error() != "2 SNOMED codes provided. Provide only one SNOMED code." {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestRequireSingleCode_PropagatesUnsupportedType(t *testing.T) {
	if _, err := RequireSingleCode(map[string]string{}); !errors.Is(err, ErrUnsupportedInputType) {
		t.Errorf("expected ErrUnsupportedInputType, got %v", err)
	}
}
