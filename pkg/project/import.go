package project

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

const maxImportFileSize = 256 * 1024

// skipDirs are directories never imported regardless of ignore rules.
var skipDirs = map[string]bool{
	".git":         true,
	".ollama-chat": true,
	"node_modules": true,
	"vendor":       true,
}

// ImportWorkspace seeds a project from the files under rootDir, honoring the
// workspace .gitignore. Binary files and files over maxImportFileSize are
// skipped. Returns the number of artifacts imported.
func ImportWorkspace(ctx context.Context, store *Store, projectID, rootDir string, inferLanguage func(string) string) (int, error) {
	rules := loadIgnoreRules(rootDir)
	imported := 0

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDirs[d.Name()] || (rules != nil && rel != "." && rules.MatchesPath(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if rules != nil && rules.MatchesPath(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxImportFileSize {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil || looksBinary(data) {
			return nil
		}

		lang := "text"
		if inferLanguage != nil {
			lang = inferLanguage(rel)
		}
		a := Artifact{
			Path:      rel,
			Content:   string(data),
			Language:  lang,
			CreatedBy: CreatedByUser,
			Source:    SourceImport,
		}
		if err := store.Upsert(ctx, projectID, a); err != nil {
			return err
		}
		imported++
		return nil
	})
	if err != nil {
		return imported, fmt.Errorf("workspace import failed: %w", err)
	}
	return imported, nil
}

// loadIgnoreRules reads .gitignore at the workspace root, if present.
func loadIgnoreRules(rootDir string) *ignore.GitIgnore {
	f, err := os.Open(filepath.Join(rootDir, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}

// looksBinary reports whether data appears to be non-text content.
func looksBinary(data []byte) bool {
	sample := data
	if len(sample) > 8000 {
		sample = sample[:8000]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	return !strings.ContainsAny(string(sample), "\n ") && len(sample) > 500
}
