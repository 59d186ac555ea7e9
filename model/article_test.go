package model

import (
	"reflect"
	"testing"
)

func TestValidCategory(t *testing.T) {
	for _, category := range Categories {
		if !ValidCategory(category) {
			t.Errorf("%q should be valid", category)
		}
	}
	for _, category := range []string{"", "dbs", "Nonsense"} {
		if ValidCategory(category) {
			t.Errorf("%q should be invalid", category)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"lowercases", []string{"Urgent", "PHONE"}, []string{"urgent", "phone"}},
		{"trims and drops blanks", []string{" a ", "", "  "}, []string{"a"}},
		{"dedupes keeping first position", []string{"b", "A", "B", "a"}, []string{"b", "a"}},
		{"nil in empty out", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
