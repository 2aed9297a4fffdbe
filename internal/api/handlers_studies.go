package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/dgallion1/critree/internal/store"
	"github.com/go-chi/chi/v5"
)

// handleListCriteria returns a study's stored criteria, or re-renders them as
// indented text with ?format=text.
func (s *Server) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "studyID")
	rows, err := s.store.ListCriteria(r.Context(), studyID)
	if err != nil {
		s.log.Error("list criteria failed", "study_id", studyID, "error", err)
		jsonError(w, "failed to list criteria", http.StatusInternalServerError)
		return
	}
	if len(rows) == 0 {
		jsonError(w, "no criteria stored for study", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(renderStudy(rows)))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"study_id": studyID,
		"count":    len(rows),
		"criteria": rows,
	})
}

// renderStudy re-renders stored rows section by section, blank line between.
func renderStudy(rows []store.Criterion) string {
	groups := store.GroupBySection(rows)
	var parts []string
	for _, kind := range criteria.Kinds {
		lines := groups[kind]
		if len(lines) == 0 {
			continue
		}
		parts = append(parts, doctree.Build(kind, lines).Render())
	}
	return strings.Join(parts, "\n")
}

func (s *Server) handleDeleteCriteria(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "studyID")
	ctx := r.Context()

	deleted, err := s.store.DeleteStudy(ctx, studyID)
	if err != nil {
		s.log.Error("delete study failed", "study_id", studyID, "error", err)
		jsonError(w, "failed to delete criteria", http.StatusInternalServerError)
		return
	}

	mirrorCleared := false
	if s.mirror != nil {
		if err := s.mirror.ClearStudy(ctx, studyID); err != nil {
			s.log.Warn("mirror clear failed", "study_id", studyID, "error", err)
		} else {
			mirrorCleared = true
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"study_id":       studyID,
		"rows_deleted":   deleted,
		"mirror_cleared": mirrorCleared,
	})
}

// handleMirrorView lists the study's nodes in the pathstore mirror.
func (s *Server) handleMirrorView(w http.ResponseWriter, r *http.Request) {
	if s.mirror == nil {
		jsonError(w, "pathstore mirror disabled", http.StatusNotFound)
		return
	}
	studyID := chi.URLParam(r, "studyID")
	limit := 500
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	nodes, err := s.mirror.View(r.Context(), studyID, limit)
	if err != nil {
		jsonError(w, "failed to read mirror: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"study_id": studyID,
		"nodes":    nodes,
	})
}
