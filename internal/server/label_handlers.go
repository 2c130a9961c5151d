package server

import (
	"net/http"

	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// LabelRequest is the body of a new label.
type LabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Store.Labels())
}

func (s *Server) handleCreateLabel(w http.ResponseWriter, r *http.Request) {
	var req LabelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeSharedError(w, err)
		return
	}
	l, err := s.config.Store.AddLabel(req.Name, req.Color)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleUpdateLabel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch models.LabelPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeSharedError(w, err)
		return
	}
	l, err := s.config.Store.UpdateLabel(id, patch)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if l == nil {
		writeNotFound(w, "label %s not found", id)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLabel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := s.config.Store.DeleteLabel(id)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if !deleted {
		writeNotFound(w, "label %s not found", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
