package patch

import (
	"fmt"
	"strings"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		oldText string
		newText string
		wantMin float64
		wantMax float64
	}{
		{
			name:    "identical",
			oldText: "a\nb\nc",
			newText: "a\nb\nc",
			wantMin: 1.0,
			wantMax: 1.0,
		},
		{
			name:    "completely different",
			oldText: "a\nb\nc",
			newText: "x\ny\nz",
			wantMin: 0.0,
			wantMax: 0.1,
		},
		{
			name:    "one line of ten changed",
			oldText: "l0\nl1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9",
			newText: "l0\nl1\nl2\nl3\nCHANGED\nl5\nl6\nl7\nl8\nl9",
			wantMin: 0.85,
			wantMax: 0.95,
		},
		{
			name:    "both empty",
			oldText: "",
			newText: "",
			wantMin: 1.0,
			wantMax: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.oldText, tt.newText)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("Similarity() = %f, want in [%f, %f]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

// A long file with one changed line must be measured as nearly identical, so
// the one-line edit qualifies for an incremental update.
func TestSimilarityLargeFileSmallEdit(t *testing.T) {
	lines := make([]string, 400)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %03d with some padding text", i)
	}
	oldText := strings.Join(lines, "\n")

	lines[200] = "changed"
	newText := strings.Join(lines, "\n")

	if got := Similarity(oldText, newText); got < 0.99 {
		t.Errorf("Similarity() = %f, want >= 0.99", got)
	}
}

func TestGenerate(t *testing.T) {
	oldText := "line1\nline2\nline3\nline4\nline5"
	newText := "line1\nline2\nmodified\nline4\nline5"

	patch := Generate(oldText, newText, "src/app.py")

	for _, want := range []string{
		"--- a/src/app.py\n",
		"+++ b/src/app.py\n",
		"@@ -1,5 +1,5 @@\n",
		"-line3\n",
		"+modified\n",
		" line2\n",
	} {
		if !strings.Contains(patch, want) {
			t.Errorf("patch missing %q:\n%s", want, patch)
		}
	}
}

func TestGenerateIdentical(t *testing.T) {
	if patch := Generate("same", "same", "f.txt"); patch != "" {
		t.Errorf("Generate() = %q, want empty", patch)
	}
}

// Apply(old, Generate(old, new)) must reproduce new byte for byte.
func TestGenerateApplyRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		oldText string
		newText string
	}{
		{
			name:    "middle line changed",
			oldText: "a\nb\nc\nd\ne",
			newText: "a\nb\nX\nd\ne",
		},
		{
			name:    "lines inserted",
			oldText: "a\nb\nc",
			newText: "a\nnew1\nnew2\nb\nc",
		},
		{
			name:    "lines deleted",
			oldText: "a\nb\nc\nd",
			newText: "a\nd",
		},
		{
			name:    "append at end",
			oldText: "a\nb",
			newText: "a\nb\nc",
		},
		{
			name:    "prepend at start",
			oldText: "b\nc",
			newText: "a\nb\nc",
		},
		{
			name:    "no trailing newline preserved",
			oldText: "a\nb\nend",
			newText: "a\nB\nend",
		},
		{
			name:    "trailing newline preserved",
			oldText: "a\nb\n",
			newText: "a\nc\n",
		},
		{
			name:    "distant hunks",
			oldText: "h0\nl1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\nl11\nl12\ntail",
			newText: "H0\nl1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\nl11\nl12\nTAIL",
		},
		{
			name:    "empty to content",
			oldText: "",
			newText: "hello\nworld",
		},
		{
			name:    "content to empty",
			oldText: "hello\nworld",
			newText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch := Generate(tt.oldText, tt.newText, "f.txt")
			result, err := Apply(tt.oldText, patch)
			if err != nil {
				t.Fatalf("Apply() error: %v\npatch:\n%s", err, patch)
			}
			if !result.Applied() {
				t.Fatalf("Apply() conflicted: %+v\npatch:\n%s", result.Conflicts, patch)
			}
			if result.Content != tt.newText {
				t.Errorf("round trip = %q, want %q", result.Content, tt.newText)
			}
		})
	}
}

func TestStats(t *testing.T) {
	tests := []struct {
		name           string
		oldText        string
		newText        string
		wantInsertions int
		wantDeletions  int
	}{
		{
			name:           "identical",
			oldText:        "a\nb",
			newText:        "a\nb",
			wantInsertions: 0,
			wantDeletions:  0,
		},
		{
			name:           "one line replaced",
			oldText:        "a\nb\nc\n",
			newText:        "a\nX\nc\n",
			wantInsertions: 1,
			wantDeletions:  1,
		},
		{
			name:           "two lines added",
			oldText:        "a\n",
			newText:        "a\nb\nc\n",
			wantInsertions: 2,
			wantDeletions:  0,
		},
		{
			name:           "two lines removed",
			oldText:        "a\nb\nc\n",
			newText:        "a\n",
			wantInsertions: 0,
			wantDeletions:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, del := Stats(tt.oldText, tt.newText)
			if ins != tt.wantInsertions || del != tt.wantDeletions {
				t.Errorf("Stats() = (+%d, -%d), want (+%d, -%d)",
					ins, del, tt.wantInsertions, tt.wantDeletions)
			}
		})
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one", 1},
		{"one\n", 1},
		{"one\ntwo", 2},
		{"one\ntwo\n", 2},
	}

	for _, tt := range tests {
		if got := countLines(tt.content); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestFormatRange(t *testing.T) {
	tests := []struct {
		start, stop int
		want        string
	}{
		{0, 1, "1"},
		{0, 5, "1,5"},
		{2, 2, "2,0"},
		{10, 11, "11"},
	}

	for _, tt := range tests {
		if got := formatRange(tt.start, tt.stop); got != tt.want {
			t.Errorf("formatRange(%d, %d) = %s, want %s", tt.start, tt.stop, got, tt.want)
		}
	}
}
