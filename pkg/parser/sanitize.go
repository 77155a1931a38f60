package parser

import (
	"path"
	"strings"
)

// unsafePathChars are stripped from declared paths before use.
const unsafePathChars = `<>:"|?*`

// languageByExt maps a file extension (without dot) to a language tag.
var languageByExt = map[string]string{
	"js":    "javascript",
	"jsx":   "javascript",
	"mjs":   "javascript",
	"ts":    "typescript",
	"tsx":   "typescript",
	"py":    "python",
	"go":    "go",
	"rs":    "rust",
	"java":  "java",
	"c":     "c",
	"h":     "c",
	"cpp":   "cpp",
	"cc":    "cpp",
	"hpp":   "cpp",
	"cs":    "csharp",
	"rb":    "ruby",
	"php":   "php",
	"swift": "swift",
	"kt":    "kotlin",
	"html":  "html",
	"htm":   "html",
	"css":   "css",
	"scss":  "css",
	"json":  "json",
	"yaml":  "yaml",
	"yml":   "yaml",
	"toml":  "toml",
	"md":    "markdown",
	"sh":    "bash",
	"bash":  "bash",
	"zsh":   "bash",
	"sql":   "sql",
	"xml":   "xml",
	"txt":   "text",
}

// SanitizePath normalizes a raw declared file path into a safe relative path.
// It trims whitespace, converts backslashes to forward slashes, drops ".."
// and "." segments and strips characters that are unsafe in paths. The result
// is always non-empty; a path with no extension gets ".txt" appended unless
// it ends in "/". Never returns an error.
func SanitizePath(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.ReplaceAll(p, "\\", "/")

	var cleaned strings.Builder
	for _, r := range p {
		if !strings.ContainsRune(unsafePathChars, r) {
			cleaned.WriteRune(r)
		}
	}
	p = cleaned.String()

	trailingSlash := strings.HasSuffix(p, "/")
	segments := strings.Split(p, "/")
	kept := segments[:0]
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		kept = append(kept, seg)
	}
	p = strings.Join(kept, "/")

	if p == "" {
		return "untitled.txt"
	}
	if trailingSlash {
		return p + "/"
	}
	if path.Ext(p) == "" {
		p += ".txt"
	}
	return p
}

// InferLanguage returns the language tag for a path based on its extension,
// or "text" when the extension is missing or unknown.
func InferLanguage(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filePath), "."))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return "text"
}
