package patch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// splitLines splits text into lines without terminators. strings.Split is
// the exact inverse of strings.Join, so applying a patch reproduces content
// byte for byte, including files without a trailing newline.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Similarity returns a sequence-alignment similarity ratio between two
// texts: 1.0 for identical content, 0.0 for completely different content.
// The comparison is line-based.
func Similarity(oldText, newText string) float64 {
	if oldText == newText {
		return 1.0
	}
	m := difflib.NewMatcher(splitLines(oldText), splitLines(newText))
	return m.Ratio()
}

// Generate produces a unified diff between two text contents: file headers,
// "@@ -start,len +start,len @@" hunk headers, then context (' '),
// addition ('+') and deletion ('-') lines with three lines of context.
// Identical contents yield an empty patch.
func Generate(oldText, newText, path string) string {
	if oldText == newText {
		return ""
	}

	a := splitLines(oldText)
	b := splitLines(newText)
	m := difflib.NewMatcher(a, b)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- a/%s\n", path)
	fmt.Fprintf(&buf, "+++ b/%s\n", path)

	for _, group := range m.GetGroupedOpCodes(3) {
		first, last := group[0], group[len(group)-1]
		fmt.Fprintf(&buf, "@@ -%s +%s @@\n",
			formatRange(first.I1, last.I2), formatRange(first.J1, last.J2))

		for _, op := range group {
			switch op.Tag {
			case 'e':
				for _, line := range a[op.I1:op.I2] {
					buf.WriteString(" " + line + "\n")
				}
			case 'r':
				for _, line := range a[op.I1:op.I2] {
					buf.WriteString("-" + line + "\n")
				}
				for _, line := range b[op.J1:op.J2] {
					buf.WriteString("+" + line + "\n")
				}
			case 'd':
				for _, line := range a[op.I1:op.I2] {
					buf.WriteString("-" + line + "\n")
				}
			case 'i':
				for _, line := range b[op.J1:op.J2] {
					buf.WriteString("+" + line + "\n")
				}
			}
		}
	}

	return buf.String()
}

// formatRange renders the "start,length" part of a hunk header. Start is
// 1-based; a zero-length range names the line before the hunk.
func formatRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return fmt.Sprintf("%d", beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}

// Stats counts inserted and deleted lines between two texts using a
// line-mode diff.
func Stats(oldText, newText string) (insertions, deletions int) {
	if oldText == newText {
		return 0, 0
	}

	dmp := diffmatchpatch.New()
	c1, c2, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lineArray)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			insertions += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			deletions += countLines(d.Text)
		}
	}

	return insertions, deletions
}

// countLines counts the number of lines in a string.
// Empty string = 0 lines; a final line without a trailing newline counts.
func countLines(content string) int {
	if content == "" {
		return 0
	}

	count := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		count++
	}

	return count
}
