package server

import (
	"net/http"
	"strconv"

	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// resolveTicket looks up the {ref} path value and writes the error
// response itself when it fails.
func (s *Server) resolveTicket(w http.ResponseWriter, r *http.Request) (*models.Ticket, bool) {
	t, err := s.config.Store.ResolveTicket(r.PathValue("ref"))
	if err != nil {
		writeSharedError(w, err)
		return nil, false
	}
	return t, true
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	f, err := ticketFilter(r)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Store.ListTickets(f))
}

func (s *Server) handleNextTicketNumber(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"ticketNumber": s.config.Store.NextTicketNumber()})
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var in models.TicketInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeSharedError(w, err)
		return
	}

	t, err := s.config.Store.AddTicket(in)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	var patch models.TicketPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeSharedError(w, err)
		return
	}

	updated, err := s.config.Store.UpdateTicket(t.ID, patch)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if updated == nil {
		writeNotFound(w, "ticket %d not found", t.ID)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	deleted, err := s.config.Store.DeleteTicket(t.ID)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if !deleted {
		writeNotFound(w, "ticket %d not found", t.ID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dependency handlers

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.config.Store.DependencyTickets(t.ID))
}

func (s *Server) handleBlocked(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.config.Store.BlockedTickets(t.ID))
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	if strict, _ := strconv.ParseBool(r.URL.Query().Get("strict")); strict {
		chain, err := s.config.Store.TicketChainStrict(t.ID)
		if err != nil {
			writeSharedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chain)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Store.TicketChain(t.ID))
}

func (s *Server) handleAddDependency(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	dep, err := s.config.Store.ResolveTicket(r.PathValue("dep"))
	if err != nil {
		writeSharedError(w, err)
		return
	}

	added, err := s.config.Store.AddDependency(t.ID, dep.ID)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if !added {
		writeNotFound(w, "ticket not found")
		return
	}
	writeJSON(w, http.StatusOK, s.config.Store.Ticket(t.ID))
}

// handleRemoveDependency accepts the id of a deleted ticket as {dep} so
// dangling links can be cleaned up.
func (s *Server) handleRemoveDependency(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	depID, number, err := common.ParseTicketRef(r.PathValue("dep"))
	if err != nil {
		writeSharedError(w, errors.InvalidArgs("invalid ticket reference %q", r.PathValue("dep")))
		return
	}
	if number != "" {
		dep, err := s.config.Store.ResolveTicket(number)
		if err != nil {
			writeSharedError(w, err)
			return
		}
		depID = dep.ID
	}

	if _, err := s.config.Store.RemoveDependency(t.ID, depID); err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Store.Ticket(t.ID))
}

// Comment handlers

// CommentRequest is the body of a new comment.
type CommentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	var req CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeSharedError(w, err)
		return
	}

	c, err := s.config.Store.AddComment(t.ID, req.Text)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if c == nil {
		writeNotFound(w, "ticket %d not found", t.ID)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	commentID, err := pathInt64(r, "commentId")
	if err != nil {
		writeSharedError(w, err)
		return
	}

	deleted, err := s.config.Store.DeleteComment(t.ID, commentID)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if !deleted {
		writeNotFound(w, "comment %d not found", commentID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTicketLabel(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveTicket(w, r)
	if !ok {
		return
	}
	updated, err := s.config.Store.ToggleTicketLabel(t.ID, r.PathValue("labelId"))
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if updated == nil {
		writeNotFound(w, "ticket %d not found", t.ID)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
