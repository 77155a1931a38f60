package webui

import (
	"encoding/json"
	"net/http"

	"github.com/kodahr27/ollama-chat-app/pkg/patch"
	"github.com/kodahr27/ollama-chat-app/pkg/project"
	"github.com/kodahr27/ollama-chat-app/pkg/utils"
)

// fileSummary is the listing payload for one artifact, content omitted.
type fileSummary struct {
	Path      string `json:"path"`
	Language  string `json:"language"`
	Display   string `json:"display_language"`
	CreatedBy string `json:"created_by"`
	Size      int    `json:"size"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.client.ListModels(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to list models: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"models":  models,
		"current": s.client.Model(),
	})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	artifacts, err := s.store.List(r.Context(), s.projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list files: %v", err)
		return
	}
	files := make([]fileSummary, 0, len(artifacts))
	for _, a := range artifacts {
		files = append(files, fileSummary{
			Path:      a.Path,
			Language:  a.Language,
			Display:   utils.DisplayLanguage(a.Language),
			CreatedBy: a.CreatedBy,
			Size:      len(a.Content),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "missing path parameter")
		return
	}
	a, ok, err := s.store.Get(r.Context(), s.projectID, path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file: %v", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "file not found: %s", path)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type applyRequest struct {
	Path       string            `json:"path"`
	Operations []patch.Operation `json:"operations"`
}

type applyResponse struct {
	ResolvedPath string          `json:"resolved_path"`
	AppliedCount int             `json:"applied_count"`
	Failed       []patch.Failure `json:"failed,omitempty"`
}

// handleApply resolves the declared edit path against the current artifact
// set, applies the operations and persists the patched content. Resolution
// is recomputed on every apply since the file set may have changed.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	artifacts, err := s.store.List(r.Context(), s.projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list files: %v", err)
		return
	}
	target := project.ResolveTarget(artifacts, req.Path)
	if target == nil {
		writeError(w, http.StatusNotFound, "no project file matches %q", req.Path)
		return
	}

	result := patch.ApplyAll(target.Content, req.Operations)
	if result.AppliedCount > 0 {
		updated := *target
		updated.Content = result.Result
		if err := s.store.Upsert(r.Context(), s.projectID, updated); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save patched file: %v", err)
			return
		}
	}
	s.logger.Logf("apply %s -> %s: %s", req.Path, target.Path, result.Summary())

	writeJSON(w, http.StatusOK, applyResponse{
		ResolvedPath: target.Path,
		AppliedCount: result.AppliedCount,
		Failed:       result.Failed,
	})
}
