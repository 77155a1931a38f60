// Package parser turns raw assistant output into structured content: prose,
// file artifacts, search/replace edit groups and instruction lines.
//
// Extraction stages run in a fixed order over an explicit remaining-content
// accumulator: edit blocks first, then file-creation blocks, then looser
// inline filename markers, then prose cleanup and instruction collection.
// The ordering matters because every stage removes its matches from the
// accumulator, which decides which heuristic wins on overlapping text.
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/kodahr27/ollama-chat-app/pkg/patch"
	"github.com/kodahr27/ollama-chat-app/pkg/project"
)

// Bounds on a single parse, keeping cost predictable on pathological input.
const (
	maxMessageSize       = 50000
	maxEditBlocks        = 5
	maxOperationsPerEdit = 10
	maxFileArtifacts     = 10
	maxInlineArtifacts   = 5
	maxInstructions      = 10

	truncationMarker = "\n... [message truncated]"
)

// EditGroup holds every search/replace operation a message declared for one
// target path. The path is as written by the model and is resolved against
// the project's artifact set at apply time, not at parse time.
type EditGroup struct {
	Path       string            `json:"path"`
	Operations []patch.Operation `json:"operations"`
}

// Response is the structured result of parsing one complete message.
type Response struct {
	Content      string             `json:"content"`
	Artifacts    []project.Artifact `json:"artifacts"`
	Edits        []EditGroup        `json:"edits"`
	Instructions []string           `json:"instructions,omitempty"`
}

// Parse extracts artifacts, edits and instructions from a complete assistant
// message. It is called once after the stream finishes, never on partial
// text. It never returns an error: malformed input degrades to fewer
// extractions, and an internal panic degrades to the original message as
// plain content.
func Parse(message string) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{Content: message}
		}
	}()

	text := message
	if len(text) > maxMessageSize {
		text = truncate(text, maxMessageSize) + truncationMarker
	}

	text, edits := extractEditBlocks(text)
	text, artifacts := extractFileBlocks(text)
	text, inline := extractInlineArtifacts(text)
	artifacts = project.Dedupe(append(artifacts, inline...))

	content := cleanProse(text)

	return Response{
		Content:      content,
		Artifacts:    artifacts,
		Edits:        edits,
		Instructions: extractInstructions(content),
	}
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// extractEditBlocks consumes fenced blocks classified as edits, returning the
// remaining text and the consolidated edit groups. Blocks declaring a path
// already seen in this parse are merged into the existing group rather than
// duplicated. Blocks past the edit-block cap are left in place.
func extractEditBlocks(text string) (string, []EditGroup) {
	lines := strings.Split(text, "\n")
	consumed := make(map[int]bool)
	var groups []EditGroup
	groupIdx := make(map[string]int)
	processed := 0

	for _, b := range scanFencedBlocks(lines) {
		if classifyBlock(b) != kindEdit {
			continue
		}
		if processed >= maxEditBlocks {
			break
		}
		processed++

		ops := extractOperations(b.body)
		if len(ops) == 0 {
			continue
		}
		declared := extractEditPath(b.body)
		if declared == "" {
			// No target path; the block is unusable but is still an edit —
			// consume it so a later stage can't misread it as a file.
			markConsumed(consumed, b)
			continue
		}
		path := SanitizePath(declared)

		if idx, seen := groupIdx[path]; seen {
			room := maxOperationsPerEdit - len(groups[idx].Operations)
			if room > 0 {
				if len(ops) > room {
					ops = ops[:room]
				}
				groups[idx].Operations = append(groups[idx].Operations, ops...)
			}
		} else {
			groupIdx[path] = len(groups)
			groups = append(groups, EditGroup{Path: path, Operations: ops})
		}
		markConsumed(consumed, b)
	}
	return joinRemaining(lines, consumed), groups
}

// extractFileBlocks consumes fenced blocks carrying a recognized filename
// marker, turning each into an artifact, up to maxFileArtifacts total.
func extractFileBlocks(text string) (string, []project.Artifact) {
	lines := strings.Split(text, "\n")
	consumed := make(map[int]bool)
	var artifacts []project.Artifact

	for _, b := range scanFencedBlocks(lines) {
		if len(artifacts) >= maxFileArtifacts {
			break
		}
		if classifyBlock(b) != kindFile {
			continue
		}
		name, markerIdx := extractFileMarker(b.body)
		if name == "" {
			continue
		}
		artifacts = append(artifacts, blockArtifact(b, name, markerIdx))
		markConsumed(consumed, b)
	}
	return joinRemaining(lines, consumed), artifacts
}

func markConsumed(consumed map[int]bool, b fencedBlock) {
	for i := b.startLine; i <= b.endLine; i++ {
		consumed[i] = true
	}
}

func joinRemaining(lines []string, consumed map[int]bool) string {
	if len(consumed) == 0 {
		return strings.Join(lines, "\n")
	}
	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if !consumed[i] {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
