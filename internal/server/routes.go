package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /api/health", s.handleHealth)

	s.router.HandleFunc("GET /api/project", s.handleGetProject)
	s.router.HandleFunc("GET /api/summary", s.handleSummary)
	s.router.HandleFunc("GET /api/planning", s.handlePlanning)

	s.router.HandleFunc("GET /api/phases", s.handleListPhases)
	s.router.HandleFunc("GET /api/phases/{id}", s.handleGetPhase)
	s.router.HandleFunc("PATCH /api/phases/{id}", s.handleUpdatePhase)
	s.router.HandleFunc("GET /api/phases/{id}/epics", s.handlePhaseEpics)
	s.router.HandleFunc("POST /api/phases/{id}/criteria/{criterionId}/toggle", s.handleToggleCriterion)
	s.router.HandleFunc("POST /api/phases/{id}/decision", s.handleDecision)
	s.router.HandleFunc("POST /api/phases/{id}/purchases", s.handleAddPurchase)
	s.router.HandleFunc("DELETE /api/phases/{id}/purchases/{purchaseId}", s.handleDeletePurchase)

	s.router.HandleFunc("GET /api/tickets", s.handleListTickets)
	s.router.HandleFunc("POST /api/tickets", s.handleCreateTicket)
	s.router.HandleFunc("GET /api/tickets/next-number", s.handleNextTicketNumber)
	s.router.HandleFunc("GET /api/tickets/{ref}", s.handleGetTicket)
	s.router.HandleFunc("PATCH /api/tickets/{ref}", s.handleUpdateTicket)
	s.router.HandleFunc("DELETE /api/tickets/{ref}", s.handleDeleteTicket)
	s.router.HandleFunc("GET /api/tickets/{ref}/dependencies", s.handleDependencies)
	s.router.HandleFunc("GET /api/tickets/{ref}/blocked", s.handleBlocked)
	s.router.HandleFunc("GET /api/tickets/{ref}/chain", s.handleChain)
	s.router.HandleFunc("POST /api/tickets/{ref}/dependencies/{dep}", s.handleAddDependency)
	s.router.HandleFunc("DELETE /api/tickets/{ref}/dependencies/{dep}", s.handleRemoveDependency)
	s.router.HandleFunc("POST /api/tickets/{ref}/comments", s.handleAddComment)
	s.router.HandleFunc("DELETE /api/tickets/{ref}/comments/{commentId}", s.handleDeleteComment)
	s.router.HandleFunc("POST /api/tickets/{ref}/labels/{labelId}/toggle", s.handleToggleTicketLabel)

	s.router.HandleFunc("GET /api/labels", s.handleListLabels)
	s.router.HandleFunc("POST /api/labels", s.handleCreateLabel)
	s.router.HandleFunc("PATCH /api/labels/{id}", s.handleUpdateLabel)
	s.router.HandleFunc("DELETE /api/labels/{id}", s.handleDeleteLabel)

	s.router.HandleFunc("GET /api/export", s.handleExport)
	s.router.HandleFunc("POST /api/import", s.handleImport)
	s.router.HandleFunc("POST /api/reset", s.handleReset)

	s.router.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	s.router.HandleFunc("POST /api/auth/signout", s.handleSignOut)
	s.router.HandleFunc("GET /api/auth/session", s.handleSession)
	s.router.HandleFunc("GET /api/households", s.handleHouseholds)
	s.router.HandleFunc("GET /api/households/{id}/members", s.handleMembers)
	s.router.HandleFunc("GET /api/households/{id}/invitations", s.handleInvitations)
	s.router.HandleFunc("GET /api/rooms/{configId}/activity", s.handleRoomActivity)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"backend": s.config.Backend != nil,
	})
}
