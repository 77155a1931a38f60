// Package patch applies search/replace edit operations to in-memory file
// content, using exact substring matching with a line-based fuzzy fallback.
package patch

import (
	"fmt"
	"strings"
)

// MaxOperations bounds how many operations a single ApplyAll call will run.
const MaxOperations = 20

const previewLen = 50

// Operation is a single search/replace pair. Search should appear verbatim
// in the target content; Replace is substituted literally.
type Operation struct {
	Search  string `json:"search"`
	Replace string `json:"replace"`
}

// Failure describes one operation that could not be applied.
type Failure struct {
	Index         int    `json:"index"`
	Reason        string `json:"reason"`
	SearchPreview string `json:"search_preview"`
	SearchLen     int    `json:"search_len"`
	ContentLen    int    `json:"content_len"`
}

// Result is the outcome of applying a batch of operations.
// AppliedCount and len(Failed) are complementary per operation.
type Result struct {
	Result       string    `json:"result"`
	AppliedCount int       `json:"applied_count"`
	Failed       []Failure `json:"failed,omitempty"`
}

// ApplyAll applies operations to original in reverse declaration order, so
// index shifts from one replacement never invalidate the search targets of
// operations declared earlier. Each operation tries an exact rightmost
// substring match first, then a whitespace-tolerant line match. Failures are
// reported as data; ApplyAll never panics and never returns an error.
func ApplyAll(original string, operations []Operation) Result {
	res := Result{Result: original}
	if original == "" || len(operations) == 0 {
		return res
	}
	ops := operations
	if len(ops) > MaxOperations {
		ops = ops[:MaxOperations]
	}

	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if op.Search == "" {
			res.Failed = append(res.Failed, newFailure(i, "empty search text", op, res.Result))
			continue
		}

		// Exact match on the rightmost occurrence.
		if idx := strings.LastIndex(res.Result, op.Search); idx >= 0 {
			res.Result = res.Result[:idx] + op.Replace + res.Result[idx+len(op.Search):]
			res.AppliedCount++
			continue
		}

		// Fuzzy fallback: line-by-line match ignoring indentation.
		if patched, ok := fuzzyReplace(res.Result, op.Search, op.Replace); ok {
			res.Result = patched
			res.AppliedCount++
			continue
		}

		res.Failed = append(res.Failed, newFailure(i, "search text not found (exact and fuzzy match failed)", op, res.Result))
	}
	return res
}

func newFailure(index int, reason string, op Operation, content string) Failure {
	preview := op.Search
	if len(preview) > previewLen {
		preview = preview[:previewLen] + "..."
	}
	return Failure{
		Index:         index,
		Reason:        reason,
		SearchPreview: preview,
		SearchLen:     len(op.Search),
		ContentLen:    len(content),
	}
}

// fuzzyReplace scans candidate start lines from the end of content backward
// and accepts the first contiguous run of lines whose trimmed text equals the
// trimmed search lines. The replacement is inserted verbatim; it is not
// re-indented to match the original lines.
func fuzzyReplace(content, search, replace string) (string, bool) {
	searchLines := strings.Split(search, "\n")
	// Ignore a trailing empty line from a terminating newline in the search.
	for len(searchLines) > 0 && strings.TrimSpace(searchLines[len(searchLines)-1]) == "" {
		searchLines = searchLines[:len(searchLines)-1]
	}
	if len(searchLines) == 0 {
		return "", false
	}

	contentLines := strings.Split(content, "\n")
	if len(contentLines) < len(searchLines) {
		return "", false
	}

	for start := len(contentLines) - len(searchLines); start >= 0; start-- {
		if linesMatchTrimmed(contentLines[start:start+len(searchLines)], searchLines) {
			var out []string
			out = append(out, contentLines[:start]...)
			out = append(out, strings.Split(replace, "\n")...)
			out = append(out, contentLines[start+len(searchLines):]...)
			return strings.Join(out, "\n"), true
		}
	}
	return "", false
}

func linesMatchTrimmed(candidate, search []string) bool {
	for i := range search {
		if strings.TrimSpace(candidate[i]) != strings.TrimSpace(search[i]) {
			return false
		}
	}
	return true
}

// Summary renders a short human-readable outcome line, e.g. "2 applied, 1 failed".
func (r Result) Summary() string {
	if len(r.Failed) == 0 {
		return fmt.Sprintf("%d applied", r.AppliedCount)
	}
	return fmt.Sprintf("%d applied, %d failed", r.AppliedCount, len(r.Failed))
}
