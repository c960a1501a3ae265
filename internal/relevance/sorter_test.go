package relevance

import (
	"testing"

	"github.com/condense-dev/condense/internal/pipeline"
)

func TestSortByPriorityTiesByPath(t *testing.T) {
	in := []pipeline.ScoredCandidate{
		{Candidate: pipeline.Candidate{Path: "b.go"}, Priority: 60},
		{Candidate: pipeline.Candidate{Path: "a.go"}, Priority: 60},
		{Candidate: pipeline.Candidate{Path: "README.md"}, Priority: 100},
	}
	out := SortByPriority(in)
	want := []string{"README.md", "a.go", "b.go"}
	for i, w := range want {
		if out[i].Path != w {
			t.Errorf("position %d: got %q, want %q", i, out[i].Path, w)
		}
	}
}

func TestSortByPathAscending(t *testing.T) {
	in := []pipeline.Candidate{{Path: "z.go"}, {Path: "a.go"}, {Path: "m.go"}}
	out := SortByPath(in)
	want := []string{"a.go", "m.go", "z.go"}
	for i, w := range want {
		if out[i].Path != w {
			t.Errorf("position %d: got %q, want %q", i, out[i].Path, w)
		}
	}
}
