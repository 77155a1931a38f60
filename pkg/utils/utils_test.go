package utils

import "testing"

func TestDisplayLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"javascript", "JavaScript"},
		{"typescript", "TypeScript"},
		{"cpp", "C++"},
		{"csharp", "C#"},
		{"json", "JSON"},
		{"go", "Go"},
		{"python", "Python"},
		{"text", "Text"},
	}
	for _, tt := range tests {
		if got := DisplayLanguage(tt.in); got != tt.want {
			t.Errorf("DisplayLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"", 3, ""},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
