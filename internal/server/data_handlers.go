package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diogenes-ai-code/gtadmin/internal/db"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/store"
)

// ImportResponse reports whether an import replaced the store.
type ImportResponse struct {
	Imported bool   `json:"imported"`
	Message  string `json:"message,omitempty"`
}

// handleExport serves the export document. The ETag is the digest of the
// uncompressed document, so an unchanged store answers 304.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	compressed := r.URL.Query().Get("compress") == "zstd"

	data, err := s.config.Store.ExportBytes()
	if err != nil {
		writeSharedError(w, err)
		return
	}

	etag := `"` + db.Digest(data)
	if compressed {
		etag += "-zst"
	}
	etag += `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	name := store.ExportFileName(s.config.Now(), compressed)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if compressed {
		data = store.Compress(data)
		w.Header().Set("Content-Type", "application/zstd")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeSharedError(w, errors.InvalidArgs("failed to read import: %v", err))
		return
	}

	imported, err := s.config.Store.Import(data)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if !imported {
		writeJSON(w, http.StatusOK, ImportResponse{Message: "document needs project and phases; store unchanged"})
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: true})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.config.Store.Reset(); err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Store.Summary())
}
