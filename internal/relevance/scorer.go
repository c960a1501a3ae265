// Package relevance implements the Priority Scorer: a deterministic mapping
// from a candidate's path, extension, and depth to an integer priority in
// [0, 100]. The Budget Allocator uses this score, together with byte-wise
// path order, to decide which candidates survive a hard token ceiling.
package relevance

import (
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Score bands produced by the rule table. Declared as named constants so the
// rule table below reads as a literal transcription of the editorial intent
// rather than a pile of magic numbers.
const (
	ScoreReadme     = 100
	ScoreEntrypoint = 90
	ScoreConfig     = 80
	ScoreFixtureDir = 5
	ScoreTest       = 30
	minSourceScore  = 10
	depthPenalty    = 10
	baseSourceScore = 70
)

// entrypointPatterns are basename globs recognized as a project's entry point.
var entrypointPatterns = []string{
	"main.*", "index.*", "app.*", "lib.*", "mod.*", "__main__.py",
}

// configPatterns are basenames recognized as project configuration.
var configPatterns = []string{
	"Cargo.toml", "package.json", "tsconfig.json", "jsconfig.json",
	"pyproject.toml", "go.mod", "go.sum", "Makefile", "Dockerfile",
	"docker-compose.yml", "docker-compose.yaml", "pom.xml", "build.gradle",
	"build.gradle.kts", "Gemfile", "composer.json", "CMakeLists.txt",
	".csproj",
}

// fixtureDirSegments are path segments identifying fixture/snapshot data.
var fixtureDirSegments = []string{"fixtures", "__snapshots__", "testdata"}

// testDirSegments are path segments identifying test directories.
var testDirSegments = []string{"tests", "test", "__tests__"}

// testBasenamePattern matches common per-file test naming conventions:
// foo_test.go, test_foo.py, foo.test.js, foo.spec.ts.
var testBasenamePattern = regexp.MustCompile(`(?i)(^test_.*\.[^.]+$|.*_test\.[^.]+$|.*\.(test|spec)\.[^.]+$)`)

var readmePattern = regexp.MustCompile(`(?i)^readme(\.[^.]+)?$`)

// Score computes the Priority Scorer's rule table against a single candidate,
// returning the resulting score in [0, 100] and the name of the rule that
// matched. Rules are evaluated top-to-bottom; the first match wins. This
// function is a pure, allocation-light computation over path/ext/depth only
// -- it never reads file content.
func Score(relPath string, depth int) (score int, rule string) {
	normalized := normalisePath(relPath)
	base := path.Base(normalized)

	if readmePattern.MatchString(base) {
		return ScoreReadme, "readme"
	}

	for _, pat := range entrypointPatterns {
		if ok, _ := doublestar.Match(pat, base); ok {
			return ScoreEntrypoint, "entrypoint"
		}
	}

	for _, name := range configPatterns {
		if strings.HasSuffix(name, ".csproj") {
			if strings.HasSuffix(strings.ToLower(base), ".csproj") {
				return ScoreConfig, "config"
			}
			continue
		}
		if strings.EqualFold(base, name) {
			return ScoreConfig, "config"
		}
	}

	if containsSegment(normalized, fixtureDirSegments) {
		return ScoreFixtureDir, "fixture_dir"
	}

	if containsSegment(normalized, testDirSegments) || testBasenamePattern.MatchString(base) {
		return ScoreTest, "test"
	}

	fallback := baseSourceScore - depthPenalty*depth
	if fallback < minSourceScore {
		fallback = minSourceScore
	}
	return fallback, "depth_fallback"
}

// containsSegment reports whether any "/"-delimited component of p exactly
// matches one of segments, case-sensitively (directory names are
// case-sensitive on the platforms this tool targets).
func containsSegment(p string, segments []string) bool {
	for _, part := range strings.Split(p, "/") {
		for _, seg := range segments {
			if part == seg {
				return true
			}
		}
	}
	return false
}

// normalisePath strips a leading "./" and converts OS-specific separators to
// forward slashes, matching the glob matcher's expectations.
func normalisePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimPrefix(p, "./")
}
