package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase capitalizes the first letter of each word.
// Using golang.org/x/text/cases since strings.Title is deprecated.
func TitleCase(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// DisplayLanguage turns a language tag into a human-readable label,
// e.g. "javascript" -> "JavaScript", "cpp" -> "C++".
func DisplayLanguage(lang string) string {
	switch lang {
	case "javascript":
		return "JavaScript"
	case "typescript":
		return "TypeScript"
	case "cpp":
		return "C++"
	case "csharp":
		return "C#"
	case "html", "css", "json", "yaml", "toml", "sql", "xml", "php":
		return strings.ToUpper(lang)
	default:
		return TitleCase(lang)
	}
}

// TruncateString shortens s to at most max runes, appending an ellipsis
// when anything was cut.
func TruncateString(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
