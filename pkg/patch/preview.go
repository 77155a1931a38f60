package patch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	redColor   = "\x1b[31m"
	greenColor = "\x1b[32m"
	resetColor = "\x1b[0m"
)

// Preview renders a colored line diff between the original and patched
// content, with a stats header. Used to show a pending edit before apply.
func Preview(path, original, patched string) string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(original, patched)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	additions, deletions := 0, 0
	for _, d := range diffs {
		n := len(strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n"))
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			additions += n
		case diffmatchpatch.DiffDelete:
			deletions += n
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s%s%s: %s+%d%s %s-%d%s\n",
		"\x1b[1m", path, resetColor, greenColor, additions, resetColor, redColor, deletions, resetColor))

	for _, d := range diffs {
		lines := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			for _, line := range lines {
				sb.WriteString(fmt.Sprintf("%s+ %s%s\n", greenColor, line, resetColor))
			}
		case diffmatchpatch.DiffDelete:
			for _, line := range lines {
				sb.WriteString(fmt.Sprintf("%s- %s%s\n", redColor, line, resetColor))
			}
		case diffmatchpatch.DiffEqual:
			// Keep a little context around changes rather than the whole file.
			if len(lines) > 4 {
				sb.WriteString(fmt.Sprintf("  %s\n", lines[0]))
				sb.WriteString(fmt.Sprintf("  %s\n", lines[1]))
				sb.WriteString("  ...\n")
				sb.WriteString(fmt.Sprintf("  %s\n", lines[len(lines)-2]))
				sb.WriteString(fmt.Sprintf("  %s\n", lines[len(lines)-1]))
			} else {
				for _, line := range lines {
					sb.WriteString(fmt.Sprintf("  %s\n", line))
				}
			}
		}
	}
	return sb.String()
}
