package parser

import (
	"regexp"
	"strings"

	"github.com/kodahr27/ollama-chat-app/pkg/patch"
	"github.com/kodahr27/ollama-chat-app/pkg/project"
)

// Search/replace markers inside edit blocks, git-conflict style.
const (
	searchMarker  = "<<<<<<< SEARCH"
	divideMarker  = "======="
	replaceMarker = ">>>>>>> REPLACE"
)

// blockKind is the single classification of a fenced block. Each scanned
// block is exactly one of these; classification happens in one place so two
// extraction passes can never both claim the same block.
type blockKind int

const (
	kindProse blockKind = iota
	kindEdit
	kindFile
)

// fencedBlock is one ``` ... ``` region of the message.
type fencedBlock struct {
	tag       string   // language tag on the opening fence, lowercased
	body      []string // lines between the fences
	startLine int      // index of the opening fence line
	endLine   int      // index of the closing fence line (inclusive)
}

var fenceRegex = regexp.MustCompile("^\\s*```(\\S*)")

// scanFencedBlocks finds complete fenced code blocks. An unterminated fence
// is ignored rather than swallowing the rest of the message.
func scanFencedBlocks(lines []string) []fencedBlock {
	var blocks []fencedBlock
	inBlock := false
	var current fencedBlock

	for i, line := range lines {
		m := fenceRegex.FindStringSubmatch(line)
		if m == nil {
			if inBlock {
				current.body = append(current.body, line)
			}
			continue
		}
		if !inBlock {
			inBlock = true
			current = fencedBlock{tag: strings.ToLower(m[1]), startLine: i}
		} else {
			current.endLine = i
			blocks = append(blocks, current)
			inBlock = false
		}
	}
	return blocks
}

// classifyBlock decides what one fenced block is. A block is an edit when it
// is tagged "edit" or carries search/replace markers; a file when a filename
// can be extracted from its leading lines; prose otherwise.
func classifyBlock(b fencedBlock) blockKind {
	if b.tag == "edit" || containsSearchMarkers(b.body) {
		return kindEdit
	}
	if name, _ := extractFileMarker(b.body); name != "" {
		return kindFile
	}
	return kindProse
}

func containsSearchMarkers(lines []string) bool {
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), searchMarker) {
			return true
		}
	}
	return false
}

// markerLookahead is how many leading block lines are checked for a file marker.
const markerLookahead = 4

// editPathPrefixes announce the target file inside an edit block.
var editPathPrefixes = []string{"@@@", "///", "#", "File:", "file:", "filename:"}

// extractEditPath finds the declared target path in an edit block, checking
// the first few lines and any line directly above a search marker.
func extractEditPath(body []string) string {
	candidates := make([]int, 0, markerLookahead+2)
	for i := 0; i < len(body) && i < markerLookahead; i++ {
		candidates = append(candidates, i)
	}
	for i, line := range body {
		if strings.HasPrefix(strings.TrimSpace(line), searchMarker) && i > 0 {
			candidates = append(candidates, i-1)
		}
	}

	for _, i := range candidates {
		line := strings.TrimSpace(body[i])
		// Combined markers like "# file: foo.py" carry a comment prefix in
		// front of the keyword; strip it before the keyword check.
		if name := fileMarkerName(line); name != "" {
			return name
		}
		for _, prefix := range editPathPrefixes {
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			rest := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			if name := firstPathToken(rest); name != "" {
				return name
			}
		}
	}
	return ""
}

// extractOperations pulls search/replace pairs out of an edit block, capped
// at maxOperationsPerEdit. Grounded in git-conflict-marker scanning.
func extractOperations(body []string) []patch.Operation {
	var ops []patch.Operation
	var search, replace []string
	var inSearch, inReplace bool

	flush := func() {
		if inReplace && len(ops) < maxOperationsPerEdit {
			ops = append(ops, patch.Operation{
				Search:  strings.Join(search, "\n"),
				Replace: strings.Join(replace, "\n"),
			})
		}
		search, replace = nil, nil
		inSearch, inReplace = false, false
	}

	for _, line := range body {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, searchMarker):
			flush()
			inSearch = true
		case trimmed == divideMarker && inSearch:
			inSearch = false
			inReplace = true
		case strings.HasPrefix(trimmed, replaceMarker) && inReplace:
			flush()
		case inSearch:
			search = append(search, line)
		case inReplace:
			replace = append(replace, line)
		}
	}
	return ops
}

// extractFileMarker looks for a filename declaration in the leading lines of
// a block and returns the declared name plus the marker line index. The
// marker line is rejected as a false positive when it looks like code.
func extractFileMarker(body []string) (string, int) {
	for i := 0; i < len(body) && i < markerLookahead; i++ {
		line := strings.TrimSpace(body[i])
		if line == "" {
			continue
		}
		if looksLikeCode(line) {
			return "", -1
		}
		if name := fileMarkerName(line); name != "" {
			return name, i
		}
		// A bare filename as the first content line.
		if i == 0 || allBlankBefore(body, i) {
			if name := bareFilename(line); name != "" {
				return name, i
			}
		}
		return "", -1 // first content line carried no marker
	}
	return "", -1
}

func allBlankBefore(body []string, i int) bool {
	for j := 0; j < i; j++ {
		if strings.TrimSpace(body[j]) != "" {
			return false
		}
	}
	return true
}

// commentPrefixes start a line comment in the languages we care about.
var commentPrefixes = []string{"//", "#", "--", ";", "*"}

// fileMarkerName extracts a filename from comment-style markers like
// "// filename: src/x.js", "# file: a.py" or "<!-- filename: index.html -->".
func fileMarkerName(line string) string {
	stripped := line
	stripped = strings.TrimSuffix(stripped, "*/")
	stripped = strings.TrimSuffix(stripped, "-->")
	stripped = strings.TrimPrefix(stripped, "/*")
	stripped = strings.TrimPrefix(stripped, "<!--")
	for _, p := range commentPrefixes {
		stripped = strings.TrimPrefix(stripped, p)
	}
	stripped = strings.TrimSpace(stripped)

	lower := strings.ToLower(stripped)
	for _, key := range []string{"filename:", "file:"} {
		if strings.HasPrefix(lower, key) {
			return firstPathToken(strings.TrimSpace(stripped[len(key):]))
		}
	}
	return ""
}

// bareFilename accepts a line that is nothing but a plausible filename.
func bareFilename(line string) string {
	if strings.ContainsAny(line, " \t") {
		return ""
	}
	if !strings.Contains(line, ".") {
		return ""
	}
	return firstPathToken(line)
}

// looksLikeCode guards against treating a code line as a filename marker.
func looksLikeCode(line string) bool {
	return strings.ContainsAny(line, "({=")
}

// firstPathToken returns the first whitespace-delimited token if it is a
// plausible path, empty string otherwise.
func firstPathToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	token := fields[0]
	if looksLikeCode(token) {
		return ""
	}
	if !strings.Contains(token, ".") && !strings.Contains(token, "/") {
		return ""
	}
	return token
}

// blockArtifact builds an Artifact from a file block, dropping the marker line.
func blockArtifact(b fencedBlock, name string, markerIdx int) project.Artifact {
	content := make([]string, 0, len(b.body))
	for i, line := range b.body {
		if i == markerIdx {
			continue
		}
		content = append(content, line)
	}
	path := SanitizePath(name)
	lang := b.tag
	if lang == "" {
		lang = InferLanguage(path)
	}
	return project.Artifact{
		Path:      path,
		Content:   strings.TrimSpace(strings.Join(content, "\n")),
		Language:  lang,
		CreatedBy: project.CreatedByAI,
		Source:    project.SourceParsed,
	}
}
