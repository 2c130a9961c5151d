package server

import (
	"net/http"
	"strconv"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
	"github.com/diogenes-ai-code/gtadmin/internal/store"
)

// PhaseResponse is a phase with its derived figures.
type PhaseResponse struct {
	*models.Phase
	Progress         int     `json:"progress"`
	CriteriaProgress int     `json:"criteriaProgress"`
	Spent            float64 `json:"spent"`
}

func (s *Server) phaseResponse(p *models.Phase) PhaseResponse {
	return PhaseResponse{
		Phase:            p,
		Progress:         s.config.Store.PhaseProgress(p.ID),
		CriteriaProgress: s.config.Store.CriteriaProgress(p.ID),
		Spent:            s.config.Store.PhaseSpent(p.ID),
	}
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Store.Project())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Store.Summary())
}

// ticketFilter reads the phase, status, epic and label query parameters.
func ticketFilter(r *http.Request) (store.TicketFilter, error) {
	q := r.URL.Query()
	f := store.TicketFilter{Epic: q.Get("epic"), Label: q.Get("label")}
	if v := q.Get("phase"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return f, errors.InvalidArgs("invalid phase: %q", v)
		}
		f.PhaseID = id
	}
	if v := q.Get("status"); v != "" {
		st, err := models.ParseTicketStatus(v)
		if err != nil {
			return f, errors.InvalidArgs("%s", err.Error())
		}
		f.Status = st
	}
	return f, nil
}

func (s *Server) handlePlanning(w http.ResponseWriter, r *http.Request) {
	f, err := ticketFilter(r)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Store.Planning(f))
}

// Phase handlers

func (s *Server) handleListPhases(w http.ResponseWriter, r *http.Request) {
	phases := s.config.Store.Phases()
	response := make([]PhaseResponse, 0, len(phases))
	for _, p := range phases {
		response = append(response, s.phaseResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetPhase(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	p := s.config.Store.Phase(id)
	if p == nil {
		writeNotFound(w, "phase %d not found", id)
		return
	}
	writeJSON(w, http.StatusOK, s.phaseResponse(p))
}

func (s *Server) handleUpdatePhase(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	var patch models.PhasePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeSharedError(w, err)
		return
	}
	if patch.Status != nil {
		st, err := models.ParsePhaseStatus(string(*patch.Status))
		if err != nil {
			writeSharedError(w, errors.InvalidArgs("%s", err.Error()))
			return
		}
		patch.Status = &st
	}

	p, err := s.config.Store.UpdatePhase(id, patch)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if p == nil {
		writeNotFound(w, "phase %d not found", id)
		return
	}
	writeJSON(w, http.StatusOK, s.phaseResponse(p))
}

func (s *Server) handlePhaseEpics(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if s.config.Store.Phase(id) == nil {
		writeNotFound(w, "phase %d not found", id)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Store.Epics(id))
}

func (s *Server) handleToggleCriterion(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	criterionID := r.PathValue("criterionId")

	c, err := s.config.Store.ToggleCriterion(id, criterionID)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if c == nil {
		writeNotFound(w, "criterion %s of phase %d not found", criterionID, id)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DecisionRequest is the body of a go/no-go decision.
type DecisionRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	var req DecisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeSharedError(w, err)
		return
	}
	verdict, err := models.ParseVerdict(req.Decision)
	if err != nil {
		writeSharedError(w, errors.InvalidArgs("%s", err.Error()))
		return
	}

	p, err := s.config.Store.RecordGoNoGoDecision(id, verdict, req.Notes)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if p == nil {
		writeNotFound(w, "phase %d not found", id)
		return
	}
	writeJSON(w, http.StatusOK, s.phaseResponse(p))
}

func (s *Server) handleAddPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	var in models.PurchaseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeSharedError(w, err)
		return
	}

	pu, err := s.config.Store.AddPurchase(id, in)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if pu == nil {
		writeNotFound(w, "phase %d not found", id)
		return
	}
	writeJSON(w, http.StatusCreated, pu)
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	purchaseID, err := pathInt64(r, "purchaseId")
	if err != nil {
		writeSharedError(w, err)
		return
	}

	ok, err := s.config.Store.DeletePurchase(id, purchaseID)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	if !ok {
		writeNotFound(w, "purchase %d of phase %d not found", purchaseID, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
