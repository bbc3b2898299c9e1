// SPDX-License-Identifier: MPL-2.0

package command

import "testing"

func TestAnnotateHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action Action
		def    any
		help   string
		want   string
	}{
		{"nil default", ActionStore, nil, "path", "path"},
		{"empty string default", ActionStore, "", "path", "path"},
		{"zero int is annotated", ActionStore, 0, "batch size", "batch size (default = 0)"},
		{"false is annotated", ActionStore, false, "shuffle", "shuffle (default = False)"},
		{"true is annotated", ActionStore, true, "shuffle", "shuffle (default = True)"},
		{"non-empty list", ActionAppend, []string{"a"}, "keys", "keys (default = [a])"},
		{"empty list", ActionAppend, []string{}, "keys", "keys"},
		{"nil list", ActionAppend, []string(nil), "keys", "keys"},
		{"empty map", ActionStore, map[string]int{}, "m", "m"},
		{"float", ActionStore, 1e-05, "lr", "lr (default = 1e-05)"},
		{"string", ActionStore, "metrics.json", "file", "file (default = metrics.json)"},
		{"empty help still annotated", ActionStore, -1, "", " (default = -1)"},
		{"store_true ignored", ActionStoreTrue, true, "force", "force"},
		{"store_false ignored", ActionStoreFalse, false, "quiet", "quiet"},
		{"store_const ignored", ActionStoreConst, 3, "level", "level"},
		{"help ignored", ActionHelp, "x", "show help", "show help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AnnotateHelp(tt.action, tt.def, tt.help); got != tt.want {
				t.Errorf("AnnotateHelp(%v, %#v, %q) = %q, want %q", tt.action, tt.def, tt.help, got, tt.want)
			}
		})
	}
}

func TestAnnotateHelp_DoesNotMutateDefault(t *testing.T) {
	t.Parallel()

	def := []string{"a", "b"}
	_ = AnnotateHelp(ActionAppend, def, "keys")
	if len(def) != 2 || def[0] != "a" || def[1] != "b" {
		t.Errorf("default mutated: %v", def)
	}
}

func TestIsEmptyDefault(t *testing.T) {
	t.Parallel()

	var nilPtr *int
	tests := []struct {
		name string
		def  any
		want bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"empty slice", []int{}, true},
		{"empty array", [0]int{}, true},
		{"nil pointer", nilPtr, true},
		{"zero int", 0, false},
		{"zero float", 0.0, false},
		{"false", false, false},
		{"space", " ", false},
		{"one element", []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsEmptyDefault(tt.def); got != tt.want {
				t.Errorf("IsEmptyDefault(%#v) = %v, want %v", tt.def, got, tt.want)
			}
		})
	}
}
