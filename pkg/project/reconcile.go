package project

import (
	"path"
	"strings"
)

// Dedupe removes artifacts with duplicate paths, keeping the first occurrence
// of each path and preserving order. Idempotent.
func Dedupe(artifacts []Artifact) []Artifact {
	if len(artifacts) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(artifacts))
	out := make([]Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if seen[a.Path] {
			continue
		}
		seen[a.Path] = true
		out = append(out, a)
	}
	return out
}

// normalizePath lowercases, converts backslashes to forward slashes and
// strips a leading "./" so paths from different sources compare equal.
func normalizePath(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return p
}

// ResolveTarget maps a declared (possibly imprecise) edit path to an artifact
// using a strict-to-loose cascade, stopping at the first stage that matches:
//
//  1. exact match on the normalized path
//  2. basename match
//  3. substring containment in either direction
//  4. case-insensitive containment on the raw paths
//
// Returns nil when nothing matches. When multiple same-named files exist the
// loose stages may pick the wrong one; that imprecision is accepted because
// model output rarely reproduces exact relative paths.
func ResolveTarget(artifacts []Artifact, declaredPath string) *Artifact {
	declared := normalizePath(declaredPath)
	if declared == "" {
		return nil
	}

	for i := range artifacts {
		if normalizePath(artifacts[i].Path) == declared {
			return &artifacts[i]
		}
	}

	base := path.Base(declared)
	for i := range artifacts {
		if path.Base(normalizePath(artifacts[i].Path)) == base {
			return &artifacts[i]
		}
	}

	for i := range artifacts {
		p := normalizePath(artifacts[i].Path)
		if strings.Contains(p, declared) || strings.Contains(declared, p) {
			return &artifacts[i]
		}
	}

	rawLower := strings.ToLower(declaredPath)
	for i := range artifacts {
		p := strings.ToLower(artifacts[i].Path)
		if strings.Contains(p, rawLower) || strings.Contains(rawLower, p) {
			return &artifacts[i]
		}
	}

	return nil
}
