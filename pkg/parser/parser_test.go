package parser

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fence = "```"

func TestParseFileArtifact(t *testing.T) {
	message := "Here is a file:\n" +
		fence + "javascript\n" +
		"// filename: src/x.js\n" +
		"console.log(1);\n" +
		fence + "\n"

	resp := Parse(message)

	require.Len(t, resp.Artifacts, 1)
	a := resp.Artifacts[0]
	assert.Equal(t, "src/x.js", a.Path)
	assert.Equal(t, "console.log(1);", a.Content)
	assert.Equal(t, "javascript", a.Language)
	assert.Equal(t, "ai", a.CreatedBy)
	assert.Equal(t, "Here is a file:", resp.Content)
	assert.NotContains(t, resp.Content, "console.log")
}

func TestParseFileMarkerVariants(t *testing.T) {
	tests := []struct {
		name     string
		marker   string
		wantPath string
	}{
		{"slash comment filename", "// filename: a.js", "a.js"},
		{"hash comment file", "# file: script.py", "script.py"},
		{"html comment", "<!-- filename: index.html -->", "index.html"},
		{"block comment", "/* file: style.css */", "style.css"},
		{"bare filename", "config.yaml", "config.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := fence + "\n" + tt.marker + "\nbody line\n" + fence + "\n"
			resp := Parse(message)
			require.Len(t, resp.Artifacts, 1)
			assert.Equal(t, tt.wantPath, resp.Artifacts[0].Path)
			assert.Equal(t, "body line", resp.Artifacts[0].Content)
		})
	}
}

func TestParseRejectsCodeLikeMarkerLine(t *testing.T) {
	// The first line looks like code, not a filename declaration.
	message := fence + "go\n" +
		"func main() {\n" +
		"}\n" +
		fence + "\n"

	resp := Parse(message)
	assert.Empty(t, resp.Artifacts)
	assert.Contains(t, resp.Content, "func main()")
}

func TestParseEditBlock(t *testing.T) {
	message := "Apply this change:\n" +
		fence + "edit\n" +
		"@@@ foo.py\n" +
		"<<<<<<< SEARCH\n" +
		"print('hi')\n" +
		"=======\n" +
		"print('bye')\n" +
		">>>>>>> REPLACE\n" +
		fence + "\n"

	resp := Parse(message)

	require.Len(t, resp.Edits, 1)
	edit := resp.Edits[0]
	assert.Equal(t, "foo.py", edit.Path)
	require.Len(t, edit.Operations, 1)
	assert.Equal(t, "print('hi')", edit.Operations[0].Search)
	assert.Equal(t, "print('bye')", edit.Operations[0].Replace)
	assert.Equal(t, "Apply this change:", resp.Content)
}

func TestParseEditBlockPathPrefixes(t *testing.T) {
	for _, prefix := range []string{"@@@ ", "/// ", "# ", "File: ", "file: ", "filename: "} {
		message := fence + "edit\n" +
			prefix + "pkg/util.go\n" +
			"<<<<<<< SEARCH\n" +
			"old\n" +
			"=======\n" +
			"new\n" +
			">>>>>>> REPLACE\n" +
			fence + "\n"
		resp := Parse(message)
		require.Len(t, resp.Edits, 1, "prefix %q", prefix)
		assert.Equal(t, "pkg/util.go", resp.Edits[0].Path, "prefix %q", prefix)
	}
}

func TestParseEditBlockCommentedKeywordMarker(t *testing.T) {
	// A comment prefix combined with a keyword ("# file: foo.py") names the
	// target just as well as either form on its own.
	for _, marker := range []string{"# file: foo.py", "// filename: foo.py", "-- FILE: foo.py"} {
		message := fence + "edit\n" +
			marker + "\n" +
			"<<<<<<< SEARCH\n" +
			"x = 1\n" +
			"=======\n" +
			"x = 2\n" +
			">>>>>>> REPLACE\n" +
			fence + "\n"
		resp := Parse(message)
		require.Len(t, resp.Edits, 1, "marker %q", marker)
		assert.Equal(t, "foo.py", resp.Edits[0].Path, "marker %q", marker)
		require.Len(t, resp.Edits[0].Operations, 1, "marker %q", marker)
	}
}

func TestParseUntaggedEditBlockWithMarkers(t *testing.T) {
	// Not tagged "edit" but carries search/replace markers, so it must be
	// classified as an edit, not as a file.
	message := fence + "python\n" +
		"# foo.py\n" +
		"<<<<<<< SEARCH\n" +
		"a = 1\n" +
		"=======\n" +
		"a = 2\n" +
		">>>>>>> REPLACE\n" +
		fence + "\n"

	resp := Parse(message)
	assert.Empty(t, resp.Artifacts)
	require.Len(t, resp.Edits, 1)
	assert.Equal(t, "foo.py", resp.Edits[0].Path)
}

func TestParseMergesEditGroupsForSamePath(t *testing.T) {
	block := func(search, replace string) string {
		return fence + "edit\n" +
			"@@@ foo.py\n" +
			"<<<<<<< SEARCH\n" + search + "\n" +
			"=======\n" + replace + "\n" +
			">>>>>>> REPLACE\n" +
			fence + "\n"
	}
	resp := Parse(block("one", "uno") + "\n" + block("two", "dos"))

	require.Len(t, resp.Edits, 1)
	assert.Equal(t, "foo.py", resp.Edits[0].Path)
	require.Len(t, resp.Edits[0].Operations, 2)
	assert.Equal(t, "one", resp.Edits[0].Operations[0].Search)
	assert.Equal(t, "two", resp.Edits[0].Operations[1].Search)
}

func TestParseMultipleOperationsPerBlock(t *testing.T) {
	var body strings.Builder
	body.WriteString(fence + "edit\n@@@ multi.go\n")
	for i := 0; i < 12; i++ {
		body.WriteString("<<<<<<< SEARCH\n")
		body.WriteString(fmt.Sprintf("old%d\n", i))
		body.WriteString("=======\n")
		body.WriteString(fmt.Sprintf("new%d\n", i))
		body.WriteString(">>>>>>> REPLACE\n")
	}
	body.WriteString(fence + "\n")

	resp := Parse(body.String())
	require.Len(t, resp.Edits, 1)
	assert.Len(t, resp.Edits[0].Operations, maxOperationsPerEdit)
}

func TestParseEditBlockCap(t *testing.T) {
	var msg strings.Builder
	for i := 0; i < 8; i++ {
		msg.WriteString(fence + "edit\n")
		msg.WriteString(fmt.Sprintf("@@@ file%d.go\n", i))
		msg.WriteString("<<<<<<< SEARCH\nold\n=======\nnew\n>>>>>>> REPLACE\n")
		msg.WriteString(fence + "\n\n")
	}
	resp := Parse(msg.String())
	assert.Len(t, resp.Edits, maxEditBlocks)
}

func TestParseInlineFileMarker(t *testing.T) {
	message := "File: src/app.ts\n" +
		fence + "typescript\n" +
		"export const x = 1;\n" +
		fence + "\n"

	resp := Parse(message)
	require.Len(t, resp.Artifacts, 1)
	assert.Equal(t, "src/app.ts", resp.Artifacts[0].Path)
	assert.Equal(t, "typescript", resp.Artifacts[0].Language)
	assert.Equal(t, "export const x = 1;", resp.Artifacts[0].Content)
	assert.Equal(t, "inline", resp.Artifacts[0].Source)
}

func TestParseHashFileHeading(t *testing.T) {
	message := "## FILE: lib/util.py\n" +
		fence + "python\n" +
		"def f():\n    pass\n" +
		fence + "\n"

	resp := Parse(message)
	require.Len(t, resp.Artifacts, 1)
	assert.Equal(t, "lib/util.py", resp.Artifacts[0].Path)
}

func TestParseDedupesArtifacts(t *testing.T) {
	block := fence + "\n// filename: dup.js\nfirst\n" + fence + "\n"
	second := fence + "\n// filename: dup.js\nsecond\n" + fence + "\n"

	resp := Parse(block + "\n" + second)
	require.Len(t, resp.Artifacts, 1)
	assert.Equal(t, "first", resp.Artifacts[0].Content)
}

func TestParseProseCleanup(t *testing.T) {
	message := "Intro.\n\n\n\n\nOutro." // 5 newlines collapse to 2
	resp := Parse(message)
	assert.Equal(t, "Intro.\n\nOutro.", resp.Content)
}

func TestParseInstructions(t *testing.T) {
	message := "Do the following:\n" +
		"1. Install dependencies\n" +
		"2) Run the build\n" +
		"Then restart the server\n" +
		"Finally, verify the output\n" +
		"This line is plain prose.\n"

	resp := Parse(message)
	require.Len(t, resp.Instructions, 4)
	assert.Equal(t, "1. Install dependencies", resp.Instructions[0])
	assert.Equal(t, "Then restart the server", resp.Instructions[2])
}

func TestParseTruncatesOversizedInput(t *testing.T) {
	message := strings.Repeat("a", maxMessageSize+1000)
	resp := Parse(message)
	assert.Contains(t, resp.Content, "[message truncated]")
	assert.Less(t, len(resp.Content), maxMessageSize+100)
}

func TestParseTruncationKeepsValidUTF8(t *testing.T) {
	// A stream of 3-byte runes puts the size cap mid-rune; the cut must
	// back off to a rune boundary instead of leaving invalid bytes.
	message := strings.Repeat("日", maxMessageSize/3+10)
	resp := Parse(message)
	assert.True(t, utf8.ValidString(resp.Content))
	assert.Contains(t, resp.Content, "[message truncated]")
}

func TestParseEmptyAndPlainInput(t *testing.T) {
	assert.Equal(t, Response{}, Parse(""))

	resp := Parse("just a normal chat reply with no code")
	assert.Equal(t, "just a normal chat reply with no code", resp.Content)
	assert.Empty(t, resp.Artifacts)
	assert.Empty(t, resp.Edits)
}

func TestParseUnterminatedFence(t *testing.T) {
	message := "Broken:\n" + fence + "go\n// filename: a.go\npackage a\n"
	resp := Parse(message)
	// No closing fence: nothing is extracted, nothing is lost.
	assert.Empty(t, resp.Artifacts)
	assert.Contains(t, resp.Content, "package a")
}
