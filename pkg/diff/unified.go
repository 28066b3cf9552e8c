// Package diff renders unified diffs over the line-level edit scripts
// produced by diff3.
package diff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gnewscm/gnew/pkg/diff3"
)

// ContextLines is the number of unchanged lines shown around each
// edit; overlapping or touching hunks are collapsed into one.
const ContextLines = 3

// FilePair is one file's before/after content for a diff. A missing
// side (added or removed file) is flagged rather than represented as
// empty content, so the header can show /dev/null.
type FilePair struct {
	Path          string
	Before, After []byte
	BeforeMissing bool
	AfterMissing  bool
}

// Changed reports whether the pair produces any output.
func (p FilePair) Changed() bool {
	if p.BeforeMissing != p.AfterMissing {
		return true
	}
	return !bytes.Equal(p.Before, p.After)
}

// IsBinary reports whether data looks like binary content. A NUL byte
// anywhere marks the file as binary, matching the opaque-blob rule.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

// Format writes the unified diff for a single file pair. Binary
// content on either side produces an informational stanza instead of
// hunks.
func Format(w io.Writer, p FilePair) {
	if !p.Changed() {
		return
	}

	if IsBinary(p.Before) || IsBinary(p.After) {
		fmt.Fprintf(w, "Binary files a/%s and b/%s differ\n", p.Path, p.Path)
		return
	}

	if p.BeforeMissing {
		fmt.Fprintf(w, "--- /dev/null\n")
	} else {
		fmt.Fprintf(w, "--- a/%s\n", p.Path)
	}
	if p.AfterMissing {
		fmt.Fprintf(w, "+++ /dev/null\n")
	} else {
		fmt.Fprintf(w, "+++ b/%s\n", p.Path)
	}

	lines := diff3.LineDiff(p.Before, p.After)
	for _, h := range buildHunks(lines, ContextLines) {
		oldStart, oldCount, newStart, newCount := h.lineRange(lines)
		fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)

		for _, dl := range lines[h.start:h.end] {
			switch dl.Type {
			case diff3.Equal:
				fmt.Fprintf(w, " %s\n", dl.Content)
			case diff3.Insert:
				fmt.Fprintf(w, "+%s\n", dl.Content)
			case diff3.Delete:
				fmt.Fprintf(w, "-%s\n", dl.Content)
			}
		}
	}
}

// FormatAll writes diffs for each pair in order.
func FormatAll(w io.Writer, pairs []FilePair) {
	for _, p := range pairs {
		Format(w, p)
	}
}

// hunk is a half-open range into the edit script.
type hunk struct {
	start int
	end   int
}

// buildHunks groups edits into hunks, each padded with up to
// contextLines of unchanged lines; hunks whose context touches merge.
func buildHunks(lines []diff3.DiffLine, contextLines int) []hunk {
	if contextLines < 0 {
		contextLines = 0
	}

	var hunks []hunk
	for i, dl := range lines {
		if dl.Type == diff3.Equal {
			continue
		}

		start := i - contextLines
		if start < 0 {
			start = 0
		}
		end := i + contextLines + 1
		if end > len(lines) {
			end = len(lines)
		}

		if len(hunks) == 0 || start > hunks[len(hunks)-1].end {
			hunks = append(hunks, hunk{start: start, end: end})
			continue
		}
		if end > hunks[len(hunks)-1].end {
			hunks[len(hunks)-1].end = end
		}
	}

	return hunks
}

// lineRange computes the @@ header numbers for this hunk. Line numbers
// are 1-based; an empty side is reported at the line before the hunk,
// matching standard unified-diff conventions.
func (h hunk) lineRange(lines []diff3.DiffLine) (oldStart, oldCount, newStart, newCount int) {
	oldLine, newLine := 1, 1
	for i := 0; i < h.start; i++ {
		switch lines[i].Type {
		case diff3.Equal:
			oldLine++
			newLine++
		case diff3.Delete:
			oldLine++
		case diff3.Insert:
			newLine++
		}
	}

	oldStart, newStart = oldLine, newLine

	for i := h.start; i < h.end; i++ {
		switch lines[i].Type {
		case diff3.Equal:
			oldCount++
			newCount++
		case diff3.Delete:
			oldCount++
		case diff3.Insert:
			newCount++
		}
	}

	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}

	return oldStart, oldCount, newStart, newCount
}
