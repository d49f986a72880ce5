package textdist

import "testing"

func TestByName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		found bool
	}{
		{"levenshtein", "levenshtein", true},
		{"damerau", "damerau", true},
		{"damerau-levenshtein alias", "damerau-levenshtein", true},
		{"empty defaults to levenshtein", "", true},
		{"unknown", "hamming", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := ByName(tt.input)
			if ok != tt.found {
				t.Fatalf("ByName(%q) found = %v, want %v", tt.input, ok, tt.found)
			}
			if ok && f == nil {
				t.Errorf("ByName(%q) returned nil func", tt.input)
			}
		})
	}
}

func TestByNameDefaultIsLevenshtein(t *testing.T) {
	f, ok := ByName("")
	if !ok {
		t.Fatal("ByName(\"\") not found")
	}
	// Plain Levenshtein counts a transposition as two edits.
	if got := f("ab", "ba", 5); got != 2 {
		t.Errorf("default measure (ab, ba) = %d, want 2", got)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("Names() returned nothing")
	}
	seen := make(map[string]bool)
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{NameLevenshtein, NameDamerau} {
		if !seen[want] {
			t.Errorf("Names() missing %q", want)
		}
	}
}
