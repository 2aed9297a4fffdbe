package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/dgallion1/critree/internal/parser"
)

type tagRequest struct {
	Kind  string             `json:"kind"`
	Lines []criteria.RawLine `json:"lines"`
}

// taggedLineView is a tagged line with its band spelled out.
type taggedLineView struct {
	criteria.TaggedLine
	QualifiedPath string `json:"qualified_path"`
	Band          string `json:"band"`
}

type sectionView struct {
	Kind    criteria.SectionKind `json:"kind"`
	Heading string               `json:"heading,omitempty"`
	Lines   []taggedLineView     `json:"lines"`
}

func viewLines(kind criteria.SectionKind, lines []criteria.TaggedLine) []taggedLineView {
	bands := criteria.Resolve(kind)
	out := make([]taggedLineView, len(lines))
	for i, l := range lines {
		out[i] = taggedLineView{
			TaggedLine:    l,
			QualifiedPath: criteria.QualifiedPath(kind, l.Path),
			Band:          criteria.BandName(bands, l.Classification),
		}
	}
	return out
}

// handleTag builds one pre-tokenized section.
func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Kind == "" {
		jsonError(w, "kind is required", http.StatusBadRequest)
		return
	}
	kind := criteria.ParseSectionKind(req.Kind)

	tagged, err := s.builder.Build(kind, req.Lines)
	if err != nil {
		writeHierarchyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sectionView{Kind: kind, Lines: viewLines(kind, tagged)})
}

// handleParse parses and tags an uploaded document without storing it.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	opts := parser.Options{
		DefaultKind:       s.cfg.DefaultSectionKind,
		FallbackPdftotext: s.cfg.PDFFallbackPdftotext,
	}
	if v := r.FormValue("kind"); v != "" {
		opts.DefaultKind = criteria.ParseSectionKind(v)
	}
	p, err := parser.ForFile(filename, opts)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	tagged, err := doc.Tag(s.builder)
	if err != nil {
		writeHierarchyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename": filename,
		"title":    doc.Title,
		"sections": viewSections(tagged),
	})
}

func viewSections(tagged []doctree.TaggedSection) []sectionView {
	out := make([]sectionView, len(tagged))
	for i, ts := range tagged {
		out[i] = sectionView{Kind: ts.Kind, Heading: ts.Heading, Lines: viewLines(ts.Kind, ts.Lines)}
	}
	return out
}

// readUpload reads the "file" form field, enforcing the type and size limits.
// It writes the error response itself and reports whether to continue.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if errors.Is(err, errTooLarge) {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	return filename, data, true
}

func writeHierarchyError(w http.ResponseWriter, err error) {
	var he *criteria.HierarchyError
	if errors.As(err, &he) {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}
