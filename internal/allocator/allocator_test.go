package allocator

import (
	"strings"
	"testing"

	"github.com/condense-dev/condense/internal/compressor"
	"github.com/condense-dev/condense/internal/pipeline"
)

func scored(path string, size int, priority int, fullMatch bool) pipeline.ScoredCandidate {
	return pipeline.ScoredCandidate{
		Candidate: pipeline.Candidate{
			Path:      path,
			Extension: ext(path),
			Size:      int64(size),
			Content:   []byte(strings.Repeat("x", size)),
		},
		Priority:  priority,
		FullMatch: fullMatch,
	}
}

func ext(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[i:]
}

// byteEstimate mimics a fixed bytes-per-token ratio so scenario token counts
// can be reproduced exactly regardless of content composition.
func byteEstimate(bytesPerToken int) func(string, string) int {
	return func(content string, _ string) int {
		return len(content) / bytesPerToken
	}
}

// Scenario 3: budget fits all three files; full order is priority order.
func TestAllocateBudgetFitsAll(t *testing.T) {
	candidates := []pipeline.ScoredCandidate{
		scored("README.md", 200, 100, false),
		scored("src/main.rs", 300, 90, false),
		scored("src/util.rs", 600, 60, false),
	}
	out := Allocate(candidates, nil, Options{Ceiling: 10000, Estimate: byteEstimate(1)})
	if len(out) != 3 {
		t.Fatalf("got %d results, want 3", len(out))
	}
	for _, ac := range out {
		if ac.Decision != pipeline.DecisionFull {
			t.Errorf("%s: decision = %v, want Full", ac.Path, ac.Decision)
		}
	}
	wantOrder := []string{"README.md", "src/main.rs", "src/util.rs"}
	for i, w := range wantOrder {
		if out[i].Path != w {
			t.Errorf("position %d: got %q, want %q", i, out[i].Path, w)
		}
	}
}

// Scenario 4: budget excludes the largest file.
func TestAllocateBudgetExcludesSome(t *testing.T) {
	candidates := []pipeline.ScoredCandidate{
		scored("README.md", 200, 100, false), // ~50 tok
		scored("src/main.rs", 3000, 90, false), // ~750 tok
		scored("src/util.rs", 600, 60, false),  // ~150 tok
	}
	out := Allocate(candidates, nil, Options{Ceiling: 300, Estimate: byteEstimate(4)})

	byPath := map[string]pipeline.AllocatedCandidate{}
	for _, ac := range out {
		byPath[ac.Path] = ac
	}

	if byPath["README.md"].Decision != pipeline.DecisionFull {
		t.Errorf("README.md should be included full")
	}
	if byPath["src/util.rs"].Decision != pipeline.DecisionFull {
		t.Errorf("util.rs should be included full")
	}
	if byPath["src/main.rs"].Decision != pipeline.DecisionExcluded {
		t.Errorf("main.rs should be excluded")
	}
}

// Scenario 6: full-match override allocates util.rs first, ahead of README.
func TestAllocateFullMatchOverride(t *testing.T) {
	candidates := []pipeline.ScoredCandidate{
		scored("README.md", 200, 100, false),
		scored("src/main.rs", 3000, 90, false),
		scored("src/util.rs", 600, 60, true), // full-match forced
	}
	out := Allocate(candidates, nil, Options{Ceiling: 300, Estimate: byteEstimate(4)})

	if out[0].Path != "src/util.rs" {
		t.Fatalf("full-match group must be emitted first, got %q", out[0].Path)
	}
	if out[0].Decision != pipeline.DecisionFull {
		t.Errorf("full-match candidate decision = %v, want Full", out[0].Decision)
	}

	byPath := map[string]pipeline.AllocatedCandidate{}
	for _, ac := range out {
		byPath[ac.Path] = ac
	}
	if byPath["src/main.rs"].Decision != pipeline.DecisionExcluded {
		t.Errorf("main.rs should be excluded")
	}
}

// C=0 legally excludes every candidate.
func TestAllocateZeroCeilingExcludesAll(t *testing.T) {
	candidates := []pipeline.ScoredCandidate{
		scored("a.go", 10, 50, false),
		scored("b.go", 10, 50, false),
	}
	out := Allocate(candidates, nil, Options{Ceiling: 0, Estimate: byteEstimate(4)})
	for _, ac := range out {
		if ac.Decision != pipeline.DecisionExcluded {
			t.Errorf("%s: expected excluded at ceiling 0", ac.Path)
		}
		if ac.ExclusionReason != ExclusionBudget {
			t.Errorf("%s: exclusion reason = %q, want %q", ac.Path, ac.ExclusionReason, ExclusionBudget)
		}
	}
}

// Full-match candidates never retry as compressed, even when a dispatcher is
// available and compression is active.
func TestAllocateFullMatchNeverCompresses(t *testing.T) {
	candidates := []pipeline.ScoredCandidate{
		scored("src/util.rs", 4000, 60, true),
	}
	out := Allocate(candidates, compressor.NewDispatcher(), Options{
		Ceiling:           10,
		CompressionActive: true,
		Estimate:          byteEstimate(4),
	})
	if out[0].Decision != pipeline.DecisionExcluded {
		t.Errorf("oversized full-match candidate must be excluded, not compressed, got %v", out[0].Decision)
	}
}
