package textdist

import "testing"

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"identical empty", "", "", 0},
		{"identical word", "report", "report", 0},
		{"empty a", "", "match", 5},
		{"empty b", "match", "", 5},
		{"one substitution", "cat", "cet", 1},
		{"one insertion", "cat", "cart", 1},
		{"one deletion", "cart", "cat", 1},

		// Transpositions count as single edits
		{"transposition ab-ba", "ab", "ba", 1},
		{"transposition teh-the", "teh", "the", 1},
		{"transposition recieve-receive", "recieve", "receive", 1},

		{"kitten to sitting", "kitten", "sitting", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DamerauLevenshtein(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("DamerauLevenshtein(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
			reverse := DamerauLevenshtein(tt.b, tt.a)
			if result != reverse {
				t.Errorf("DamerauLevenshtein is not symmetric: (%q,%q)=%d, (%q,%q)=%d",
					tt.a, tt.b, result, tt.b, tt.a, reverse)
			}
		})
	}
}

func TestBoundedDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		maxDist  int
		expected int
	}{
		{"transposition within budget", "teh", "the", 1, 1},
		{"transposition at zero budget", "teh", "the", 0, 1},
		{"exact under budget", "cart", "cat", 3, 1},
		{"over budget", "kitten", "sitting", 1, 2},
		{"length gap alone exceeds", "ab", "abcdef", 2, 3},
		{"identical", "same", "same", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BoundedDamerauLevenshtein(tt.a, tt.b, tt.maxDist)
			if result != tt.expected {
				t.Errorf("BoundedDamerauLevenshtein(%q, %q, %d) = %d, want %d",
					tt.a, tt.b, tt.maxDist, result, tt.expected)
			}
		})
	}
}

func TestBoundedDamerauAgreesWithUnbounded(t *testing.T) {
	pairs := [][2]string{
		{"teh", "the"},
		{"recieve", "receive"},
		{"kitten", "sitting"},
		{"ab", "ba"},
		{"", "abc"},
	}
	for _, p := range pairs {
		exact := DamerauLevenshtein(p[0], p[1])
		for budget := 0; budget <= 5; budget++ {
			want := exact
			if exact > budget {
				want = budget + 1
			}
			got := BoundedDamerauLevenshtein(p[0], p[1], budget)
			if got != want {
				t.Errorf("BoundedDamerauLevenshtein(%q, %q, %d) = %d, want %d (exact %d)",
					p[0], p[1], budget, got, want, exact)
			}
		}
	}
}

func BenchmarkDamerauLevenshtein_Short(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DamerauLevenshtein("kitten", "sitting")
	}
}
