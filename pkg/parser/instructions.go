package parser

import (
	"regexp"
	"strings"

	"github.com/kodahr27/ollama-chat-app/pkg/project"
)

// inlineFileRegex catches looser formats not using a filename comment inside
// the fence: a "File: x" or "## FILE: x" line directly above a fenced block.
var inlineFileRegex = regexp.MustCompile(
	"(?m)^(?:#+\\s*FILE:|[Ff]ile:)[ \\t]*(\\S+)[ \\t]*\\n```([^\\n`]*)\\n((?s:.*?))\\n?```[ \\t]*$")

// extractInlineArtifacts applies the secondary filename-marker patterns to
// the remaining text, capped at maxInlineArtifacts.
func extractInlineArtifacts(text string) (string, []project.Artifact) {
	var artifacts []project.Artifact

	matches := inlineFileRegex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var kept strings.Builder
	last := 0
	for _, m := range matches {
		if len(artifacts) >= maxInlineArtifacts {
			break
		}
		name := text[m[2]:m[3]]
		tag := strings.ToLower(text[m[4]:m[5]])
		body := text[m[6]:m[7]]

		if firstPathToken(name) == "" || containsSearchMarkers(strings.Split(body, "\n")) {
			continue
		}

		path := SanitizePath(name)
		lang := tag
		if lang == "" {
			lang = InferLanguage(path)
		}
		artifacts = append(artifacts, project.Artifact{
			Path:      path,
			Content:   strings.TrimSpace(body),
			Language:  lang,
			CreatedBy: project.CreatedByAI,
			Source:    project.SourceInline,
		})

		kept.WriteString(text[last:m[0]])
		last = m[1]
	}
	kept.WriteString(text[last:])
	return kept.String(), artifacts
}

var excessNewlines = regexp.MustCompile("\n{3,}")

// cleanProse collapses runs of blank lines left behind by block removal.
func cleanProse(text string) string {
	return strings.TrimSpace(excessNewlines.ReplaceAllString(text, "\n\n"))
}

var (
	numberedItemRegex = regexp.MustCompile(`^\s*\d+[.)]\s+\S`)
	stepWordRegex     = regexp.MustCompile(`^(?i:step\b|first\b|then\b|next\b|finally\b)`)
)

// extractInstructions collects step-like lines from the prose, best-effort
// and purely informational.
func extractInstructions(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if len(out) >= maxInstructions {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if numberedItemRegex.MatchString(line) || stepWordRegex.MatchString(trimmed) {
			out = append(out, trimmed)
		}
	}
	return out
}
