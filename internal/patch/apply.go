package patch

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/superagent-dev/superagent/internal/errors"
)

// ApplyStatus describes the outcome of applying a patch
type ApplyStatus string

const (
	// StatusApplied means every hunk applied cleanly
	StatusApplied ApplyStatus = "applied"
	// StatusConflicted means a context or deletion line did not match the source
	StatusConflicted ApplyStatus = "conflict"
)

// Conflict records a hunk line that did not match the source it was applied to
type Conflict struct {
	// SourceLine is the 1-based line in the source that failed to match
	SourceLine int
	// Expected is the line content the patch claimed is there
	Expected string
	// Actual is what the source actually contains ("" past end of file)
	Actual string
}

// ApplyResult is the outcome of applying a patch to a source text
type ApplyResult struct {
	Status  ApplyStatus
	Content string
	// Conflicts is populated when Status is StatusConflicted
	Conflicts []Conflict
}

// Applied reports whether the patch applied cleanly
func (r *ApplyResult) Applied() bool {
	return r.Status == StatusApplied
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Apply reconstructs new content from old content and a unified diff.
// Context and deletion lines are verified against the source before the
// hunk is accepted: a mismatch yields a conflict result instead of silently
// producing corrupt content. A patch without any recognizable hunk header
// is a malformed-patch error.
func Apply(oldText, patchText string) (*ApplyResult, error) {
	src := splitLines(oldText)
	patchLines := strings.Split(patchText, "\n")

	var out []string
	cursor := 0 // next unconsumed source line (0-based)
	sawHunk := false
	inHunk := false
	remainOld, remainNew := 0, 0

	conflictAt := func(expected string) *ApplyResult {
		actual := ""
		if cursor < len(src) {
			actual = src[cursor]
		}
		return &ApplyResult{
			Status: StatusConflicted,
			Conflicts: []Conflict{{
				SourceLine: cursor + 1,
				Expected:   expected,
				Actual:     actual,
			}},
		}
	}

	for i, line := range patchLines {
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			sawHunk = true
			inHunk = true

			oldStart, _ := strconv.Atoi(m[1])
			remainOld = 1
			if m[2] != "" {
				remainOld, _ = strconv.Atoi(m[2])
			}
			remainNew = 1
			if m[4] != "" {
				remainNew, _ = strconv.Atoi(m[4])
			}

			// A zero-length old range names the line before the insertion
			// point, so its printed value is already the 0-based offset.
			start := oldStart - 1
			if remainOld == 0 {
				start = oldStart
			}

			if start < cursor || start > len(src) {
				return nil, errors.NewPatchMalformedError(
					"hunk start " + m[1] + " outside remaining source")
			}

			// Copy untouched source lines up to the hunk start
			out = append(out, src[cursor:start]...)
			cursor = start
			continue
		}

		if !inHunk || (remainOld == 0 && remainNew == 0) {
			// Header lines, trailing split artifact, or junk between hunks
			continue
		}

		switch {
		case strings.HasPrefix(line, " "), line == "":
			// Context line: must match the source and is copied verbatim.
			// A bare empty line is an empty context line with the marker
			// stripped by transit.
			want := strings.TrimPrefix(line, " ")
			if cursor >= len(src) || src[cursor] != want {
				return conflictAt(want), nil
			}
			out = append(out, src[cursor])
			cursor++
			remainOld--
			remainNew--
		case strings.HasPrefix(line, "-"):
			// Deletion: must match the source, advances past it
			want := line[1:]
			if cursor >= len(src) || src[cursor] != want {
				return conflictAt(want), nil
			}
			cursor++
			remainOld--
		case strings.HasPrefix(line, "+"):
			// Addition: emitted without consuming source
			out = append(out, line[1:])
			remainNew--
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file" markers carry no content
		default:
			return nil, errors.NewPatchMalformedError(
				"unrecognized line " + strconv.Itoa(i+1) + " inside hunk")
		}
	}

	if !sawHunk {
		return nil, errors.NewPatchMalformedError("no hunk headers found")
	}

	// Copy any source lines after the last hunk
	out = append(out, src[cursor:]...)

	return &ApplyResult{
		Status:  StatusApplied,
		Content: strings.Join(out, "\n"),
	}, nil
}
