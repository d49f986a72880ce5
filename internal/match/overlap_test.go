package match

import "testing"

func TestResolveOverlaps(t *testing.T) {
	tests := []struct {
		name  string
		cands []Candidate
		want  []Candidate
	}{
		{
			"two overlapping then one apart",
			[]Candidate{
				{Distance: 2, Span: Span{Start: 1, End: 3}},
				{Distance: 1, Span: Span{Start: 2, End: 4}},
				{Distance: 0, Span: Span{Start: 6, End: 7}},
			},
			[]Candidate{
				{Distance: 1, Span: Span{Start: 2, End: 4}},
				{Distance: 0, Span: Span{Start: 6, End: 7}},
			},
		},
		{
			"transitive chain collapses to one",
			[]Candidate{
				{Distance: 1, Span: Span{Start: 1, End: 3}},
				{Distance: 0, Span: Span{Start: 2, End: 4}},
				{Distance: 2, Span: Span{Start: 4, End: 5}},
			},
			[]Candidate{
				{Distance: 0, Span: Span{Start: 2, End: 4}},
			},
		},
		{
			"without the bridge the ends stay apart",
			[]Candidate{
				{Distance: 1, Span: Span{Start: 1, End: 3}},
				{Distance: 2, Span: Span{Start: 4, End: 5}},
			},
			[]Candidate{
				{Distance: 1, Span: Span{Start: 1, End: 3}},
				{Distance: 2, Span: Span{Start: 4, End: 5}},
			},
		},
		{
			"equal distance keeps the earlier candidate",
			[]Candidate{
				{Distance: 1, Span: Span{Start: 1, End: 2}},
				{Distance: 1, Span: Span{Start: 2, End: 3}},
			},
			[]Candidate{
				{Distance: 1, Span: Span{Start: 1, End: 2}},
			},
		},
		{
			"touching start joins the run",
			[]Candidate{
				{Distance: 2, Span: Span{Start: 1, End: 3}},
				{Distance: 1, Span: Span{Start: 3, End: 5}},
			},
			[]Candidate{
				{Distance: 1, Span: Span{Start: 3, End: 5}},
			},
		},
		{
			"contained range does not shrink the union",
			[]Candidate{
				{Distance: 1, Span: Span{Start: 1, End: 6}},
				{Distance: 0, Span: Span{Start: 2, End: 3}},
				{Distance: 2, Span: Span{Start: 5, End: 7}},
			},
			[]Candidate{
				{Distance: 0, Span: Span{Start: 2, End: 3}},
			},
		},
		{
			"representative need not overlap every member",
			[]Candidate{
				{Distance: 3, Span: Span{Start: 1, End: 2}},
				{Distance: 0, Span: Span{Start: 2, End: 3}},
				{Distance: 2, Span: Span{Start: 3, End: 9}},
				{Distance: 1, Span: Span{Start: 9, End: 10}},
			},
			[]Candidate{
				{Distance: 0, Span: Span{Start: 2, End: 3}},
			},
		},
		{
			"single candidate unchanged",
			[]Candidate{{Distance: 2, Span: Span{Start: 4, End: 8}}},
			[]Candidate{{Distance: 2, Span: Span{Start: 4, End: 8}}},
		},
		{"empty input", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOverlaps(tt.cands)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d candidates, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("candidate %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
