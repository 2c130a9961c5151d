package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogenes-ai-code/gtadmin/internal/backend"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
	"github.com/diogenes-ai-code/gtadmin/internal/persist"
	"github.com/diogenes-ai-code/gtadmin/internal/store"
)

var testNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

const testSnapshot = `{
  "project": {"name": "GerustThuis", "description": "", "totalBudget": 0, "currency": "EUR"},
  "phases": [
    {"id": 1, "name": "Test the Market", "status": "active", "budget": 500, "purchases": [],
     "goNoGoCriteria": [{"id": "1-1", "description": "Website live", "completed": false}]},
    {"id": 2, "name": "Test the Product", "status": "not-started", "budget": null, "purchases": [], "goNoGoCriteria": []}
  ],
  "tickets": [
    {"id": 101, "ticketNumber": "TM-01", "title": "Logo", "description": "", "phaseId": 1, "epic": "Foundation",
     "status": "done", "priority": "must", "value": "", "acceptanceCriteria": "", "estimatedHours": 2, "plannedWeek": 3,
     "labels": [], "comments": [], "dependsOn": [], "blockedBy": []},
    {"id": 102, "ticketNumber": "TM-02", "title": "Website", "description": "", "phaseId": 1, "epic": "Foundation",
     "status": "todo", "priority": "must", "value": "", "acceptanceCriteria": "", "estimatedHours": null, "plannedWeek": null,
     "labels": [], "comments": [], "dependsOn": [], "blockedBy": []},
    {"id": 103, "ticketNumber": "TM-03", "title": "Flyer", "description": "", "phaseId": 1, "epic": "Marketing",
     "status": "in-progress", "priority": "should", "value": "", "acceptanceCriteria": "", "estimatedHours": null, "plannedWeek": null,
     "labels": [], "comments": [], "dependsOn": [], "blockedBy": []}
  ],
  "labels": [{"id": "urgent", "name": "Urgent", "color": "#dc2626"}],
  "nextTicketNumber": 4
}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testStore opens a store over a memory slot holding testSnapshot.
func testStore(t *testing.T) *store.Store {
	t.Helper()
	slot := persist.NewMemorySlot()
	require.NoError(t, slot.Put("test", []byte(testSnapshot)))
	st, err := store.Open(persist.New(slot, "test", quietLogger()),
		store.Options{Logger: quietLogger(), Now: func() time.Time { return testNow }})
	require.NoError(t, err)
	return st
}

// setupTestServer creates a test server over a fresh store.
func setupTestServer(t *testing.T, b Backend) *Server {
	t.Helper()
	cfg := Config{
		Store:  testStore(t),
		Logger: quietLogger(),
		Now:    func() time.Time { return testNow },
	}
	if b != nil {
		cfg.Backend = b
	}
	srv, err := New(cfg)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNew(t *testing.T) {
	t.Run("requires store", func(t *testing.T) {
		_, err := New(Config{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "project store is required")
	})

	t.Run("sets defaults", func(t *testing.T) {
		srv, err := New(Config{Store: testStore(t)})
		require.NoError(t, err)
		assert.Equal(t, 18090, srv.config.Port)
		assert.Equal(t, "localhost", srv.config.Host)
		assert.Equal(t, "localhost:18090", srv.Address())
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	resp := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["backend"])
}

func TestRequestIDIsKept(t *testing.T) {
	srv := setupTestServer(t, nil)
	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestProjectAndSummary(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "GET", "/api/project", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GerustThuis", decode[models.Project](t, rec).Name)

	rec = do(t, srv, "GET", "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[map[string]interface{}](t, rec)
	assert.Equal(t, float64(3), sum["totalTickets"])
	assert.Equal(t, float64(1), sum["activePhaseId"])
}

func TestPlanning(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "GET", "/api/planning?phase=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	plans := decode[[]map[string]interface{}](t, rec)
	require.Len(t, plans, 2)
	assert.Equal(t, float64(3), plans[0]["week"])
	assert.Equal(t, float64(0), plans[1]["week"])
}

func TestPhaseEndpoints(t *testing.T) {
	srv := setupTestServer(t, nil)

	t.Run("list", func(t *testing.T) {
		rec := do(t, srv, "GET", "/api/phases", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		phases := decode[[]map[string]interface{}](t, rec)
		require.Len(t, phases, 2)
		assert.Equal(t, float64(33), phases[0]["progress"])
	})

	t.Run("get missing and invalid", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, srv, "GET", "/api/phases/9", nil).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, srv, "GET", "/api/phases/abc", nil).Code)
	})

	t.Run("patch accepts Dutch status", func(t *testing.T) {
		rec := do(t, srv, "PATCH", "/api/phases/2", `{"goal": "Valideren", "status": "actief"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		p := decode[map[string]interface{}](t, rec)
		assert.Equal(t, "active", p["status"])
		assert.Equal(t, "Valideren", p["goal"])
	})

	t.Run("patch rejects unknown fields", func(t *testing.T) {
		rec := do(t, srv, "PATCH", "/api/phases/2", `{"colour": "red"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("epics", func(t *testing.T) {
		rec := do(t, srv, "GET", "/api/phases/1/epics", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Foundation", "Marketing"}, decode[[]string](t, rec))
	})

	t.Run("toggle criterion", func(t *testing.T) {
		rec := do(t, srv, "POST", "/api/phases/1/criteria/1-1/toggle", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[models.Criterion](t, rec).Completed)
		assert.Equal(t, http.StatusNotFound, do(t, srv, "POST", "/api/phases/1/criteria/9-9/toggle", nil).Code)
	})
}

func TestDecisionEndpoint(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "POST", "/api/phases/1/decision", DecisionRequest{Decision: "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, "POST", "/api/phases/1/decision", DecisionRequest{Decision: "go", Notes: "door"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", decode[map[string]interface{}](t, rec)["status"])
	assert.Equal(t, models.PhaseActive, srv.config.Store.Phase(2).Status)

	assert.Equal(t, http.StatusNotFound, do(t, srv, "POST", "/api/phases/7/decision", DecisionRequest{Decision: "go"}).Code)
}

func TestPurchaseEndpoints(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "POST", "/api/phases/1/purchases", models.PurchaseInput{Description: "Domein", Amount: 12.5})
	require.Equal(t, http.StatusCreated, rec.Code)
	pu := decode[models.Purchase](t, rec)
	assert.Equal(t, "2026-10-15", pu.Date)
	assert.Equal(t, 12.5, srv.config.Store.PhaseSpent(1))

	rec = do(t, srv, "POST", "/api/phases/1/purchases", models.PurchaseInput{Description: "x", Amount: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/api/phases/1/purchases/" + strconv.FormatInt(pu.ID, 10)
	assert.Equal(t, http.StatusNoContent, do(t, srv, "DELETE", path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "DELETE", path, nil).Code)
}

func TestTicketEndpoints(t *testing.T) {
	srv := setupTestServer(t, nil)

	t.Run("list with filters", func(t *testing.T) {
		rec := do(t, srv, "GET", "/api/tickets?phase=1&status=todo", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		tickets := decode[[]models.Ticket](t, rec)
		require.Len(t, tickets, 1)
		assert.Equal(t, "TM-02", tickets[0].TicketNumber)

		assert.Equal(t, http.StatusBadRequest, do(t, srv, "GET", "/api/tickets?status=blocked", nil).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, srv, "GET", "/api/tickets?phase=x", nil).Code)
	})

	t.Run("get by id or number", func(t *testing.T) {
		rec := do(t, srv, "GET", "/api/tickets/tm-02", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(102), decode[models.Ticket](t, rec).ID)

		rec = do(t, srv, "GET", "/api/tickets/103", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Flyer", decode[models.Ticket](t, rec).Title)

		assert.Equal(t, http.StatusNotFound, do(t, srv, "GET", "/api/tickets/999", nil).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, srv, "GET", "/api/tickets/no-such-thing!", nil).Code)
	})

	t.Run("next number preview", func(t *testing.T) {
		rec := do(t, srv, "GET", "/api/tickets/next-number", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "GT-004", decode[map[string]string](t, rec)["ticketNumber"])
	})

	t.Run("create", func(t *testing.T) {
		rec := do(t, srv, "POST", "/api/tickets", `{"title": "Nieuwe flyer", "phaseId": 1}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		tk := decode[models.Ticket](t, rec)
		assert.Equal(t, "GT-004", tk.TicketNumber)
		assert.Equal(t, models.StatusTodo, tk.Status)

		assert.Equal(t, http.StatusBadRequest, do(t, srv, "POST", "/api/tickets", `{"title": "", "phaseId": 1}`).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, srv, "POST", "/api/tickets", ``).Code)
	})

	t.Run("patch", func(t *testing.T) {
		rec := do(t, srv, "PATCH", "/api/tickets/TM-02", `{"status": "in-progress", "plannedWeek": 12}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		tk := decode[models.Ticket](t, rec)
		assert.Equal(t, models.StatusInProgress, tk.Status)
		require.NotNil(t, tk.PlannedWeek)
		assert.Equal(t, 12, *tk.PlannedWeek)

		rec = do(t, srv, "PATCH", "/api/tickets/TM-02", `{"plannedWeek": null}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, decode[models.Ticket](t, rec).PlannedWeek)

		assert.Equal(t, http.StatusBadRequest, do(t, srv, "PATCH", "/api/tickets/TM-02", `{"priority": "urgent"}`).Code)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, do(t, srv, "DELETE", "/api/tickets/TM-01", nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, srv, "DELETE", "/api/tickets/TM-01", nil).Code)
	})
}

func TestDependencyEndpoints(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "POST", "/api/tickets/TM-03/dependencies/TM-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{102}, decode[models.Ticket](t, rec).DependsOn)

	rec = do(t, srv, "POST", "/api/tickets/102/dependencies/101", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, "GET", "/api/tickets/102/blocked", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	blocked := decode[[]models.Ticket](t, rec)
	require.Len(t, blocked, 1)
	assert.Equal(t, int64(103), blocked[0].ID)

	rec = do(t, srv, "GET", "/api/tickets/103/dependencies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Ticket](t, rec), 1)

	rec = do(t, srv, "GET", "/api/tickets/103/chain", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chain := decode[[]models.Ticket](t, rec)
	require.Len(t, chain, 3)
	assert.Equal(t, int64(101), chain[0].ID)
	assert.Equal(t, int64(103), chain[2].ID)

	assert.Equal(t, http.StatusNotFound, do(t, srv, "POST", "/api/tickets/103/dependencies/999", nil).Code)
}

func TestChainStrictReportsCycle(t *testing.T) {
	srv := setupTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(t, srv, "POST", "/api/tickets/101/dependencies/102", nil).Code)
	require.Equal(t, http.StatusOK, do(t, srv, "POST", "/api/tickets/102/dependencies/101", nil).Code)

	assert.Equal(t, http.StatusOK, do(t, srv, "GET", "/api/tickets/101/chain", nil).Code)

	rec := do(t, srv, "GET", "/api/tickets/101/chain?strict=true", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "dependency cycle")
}

func TestRemoveDanglingDependency(t *testing.T) {
	srv := setupTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(t, srv, "POST", "/api/tickets/103/dependencies/102", nil).Code)
	require.Equal(t, http.StatusNoContent, do(t, srv, "DELETE", "/api/tickets/102", nil).Code)
	assert.Equal(t, []int64{102}, srv.config.Store.Ticket(103).DependsOn)

	rec := do(t, srv, "DELETE", "/api/tickets/103/dependencies/102", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.Ticket](t, rec).DependsOn)
}

func TestCommentEndpoints(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "POST", "/api/tickets/TM-02/comments", CommentRequest{Text: "Offerte gevraagd"})
	require.Equal(t, http.StatusCreated, rec.Code)
	c := decode[models.Comment](t, rec)
	assert.Equal(t, "Offerte gevraagd", c.Text)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, "POST", "/api/tickets/TM-02/comments", CommentRequest{Text: "  "}).Code)

	path := "/api/tickets/TM-02/comments/" + strconv.FormatInt(c.ID, 10)
	assert.Equal(t, http.StatusNoContent, do(t, srv, "DELETE", path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "DELETE", path, nil).Code)
}

func TestLabelEndpoints(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "POST", "/api/labels", LabelRequest{Name: "Juridisch", Color: "#0ea5e9"})
	require.Equal(t, http.StatusCreated, rec.Code)
	l := decode[models.Label](t, rec)
	assert.NotEmpty(t, l.ID)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, "POST", "/api/labels", LabelRequest{Name: "urgent", Color: "#000"}).Code)

	rec = do(t, srv, "PATCH", "/api/labels/"+l.ID, `{"color": "#111111"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#111111", decode[models.Label](t, rec).Color)

	rec = do(t, srv, "POST", "/api/tickets/TM-02/labels/"+l.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{l.ID}, decode[models.Ticket](t, rec).Labels)

	assert.Equal(t, http.StatusNoContent, do(t, srv, "DELETE", "/api/labels/"+l.ID, nil).Code)
	assert.Empty(t, srv.config.Store.Ticket(102).Labels)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "DELETE", "/api/labels/"+l.ID, nil).Code)

	rec = do(t, srv, "GET", "/api/labels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Label](t, rec), 1)
}

func TestExportEndpoint(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "GET", "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.NotEmpty(t, etag)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "gerustthuis-admin-2026-10-15.json")
	assert.Equal(t, "GerustThuis", decode[models.Snapshot](t, rec).Project.Name)

	req := httptest.NewRequest("GET", "/api/export", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	srv.Handler().ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	_, err := srv.config.Store.AddComment(101, "verandering")
	require.NoError(t, err)
	rec = do(t, srv, "GET", "/api/export", nil)
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))

	rec = do(t, srv, "GET", "/api/export?compress=zstd", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0x28, 0xb5, 0x2f, 0xfd}))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".json.zst")
}

func TestImportEndpoint(t *testing.T) {
	src := setupTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(t, src, "POST", "/api/tickets/103/dependencies/102", nil).Code)
	export := do(t, src, "GET", "/api/export?compress=zstd", nil).Body.Bytes()

	dst := setupTestServer(t, nil)
	require.Equal(t, http.StatusNoContent, do(t, dst, "DELETE", "/api/tickets/101", nil).Code)

	rec := do(t, dst, "POST", "/api/import", export)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[ImportResponse](t, rec).Imported)
	assert.Equal(t, src.config.Store.Snapshot(), dst.config.Store.Snapshot())

	rec = do(t, dst, "POST", "/api/import", `{"tickets": []}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[ImportResponse](t, rec).Imported)

	rec = do(t, dst, "POST", "/api/import", `{"project": {"name": "X"}, "phases": [{"id": 1, "name": "P", "status": "paused"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, src.config.Store.Snapshot(), dst.config.Store.Snapshot())

	rec = do(t, dst, "POST", "/api/import", `{"project": {"name": "X"}, "phases": [null]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, src.config.Store.Snapshot(), dst.config.Store.Snapshot())
}

func TestResetEndpoint(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := do(t, srv, "POST", "/api/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, srv.config.Store.ListTickets(store.TicketFilter{}), 92)
}

func TestBackendRoutesWithoutBackend(t *testing.T) {
	srv := setupTestServer(t, nil)

	for _, path := range []string{
		"/api/households",
		"/api/households/x/members",
		"/api/households/x/invitations",
		"/api/rooms/x/activity",
		"/api/auth/session",
	} {
		rec := do(t, srv, "GET", path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

// fakeBackend records calls and returns canned data.
type fakeBackend struct {
	session   *backend.Session
	signInErr error
	days      int
}

func (f *fakeBackend) SignIn(_ context.Context, email, _ string) (*backend.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.session = &backend.Session{AccessToken: "tok", User: backend.User{Email: email}}
	return f.session, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.session = nil
	return nil
}

func (f *fakeBackend) Session() *backend.Session { return f.session }

func (f *fakeBackend) Households(context.Context) ([]*backend.Household, error) {
	return []*backend.Household{{ID: "h1", Name: "Bakker"}}, nil
}

func (f *fakeBackend) Members(_ context.Context, id string) ([]*backend.Member, error) {
	return []*backend.Member{{ID: "m1", HouseholdID: id, Role: "owner"}}, nil
}

func (f *fakeBackend) Invitations(context.Context, string) ([]*backend.Invitation, error) {
	return nil, errors.InvalidArgs("invalid household id")
}

func (f *fakeBackend) RoomActivity(_ context.Context, _ string, days int) ([]*backend.RoomActivity, error) {
	f.days = days
	return []*backend.RoomActivity{{RoomName: "Keuken", TotalEvents: 4}}, nil
}

func TestBackendRoutes(t *testing.T) {
	fb := &fakeBackend{}
	srv := setupTestServer(t, fb)

	rec := do(t, srv, "POST", "/api/auth/signin", SignInRequest{Email: "admin@example.com", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, SessionResponse{SignedIn: true, Email: "admin@example.com"}, decode[SessionResponse](t, rec))
	assert.NotContains(t, rec.Body.String(), "tok")

	rec = do(t, srv, "GET", "/api/households", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bakker", decode[[]backend.Household](t, rec)[0].Name)

	rec = do(t, srv, "GET", "/api/households/h1/members", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "h1", decode[[]backend.Member](t, rec)[0].HouseholdID)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, "GET", "/api/households/h1/invitations", nil).Code)

	rec = do(t, srv, "GET", "/api/rooms/c1/activity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, backend.DefaultActivityDays, fb.days)

	require.Equal(t, http.StatusOK, do(t, srv, "GET", "/api/rooms/c1/activity?days=30", nil).Code)
	assert.Equal(t, 30, fb.days)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, "GET", "/api/rooms/c1/activity?days=-1", nil).Code)

	rec = do(t, srv, "POST", "/api/auth/signout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[SessionResponse](t, do(t, srv, "GET", "/api/auth/session", nil)).SignedIn)
}

func TestSignInForbidden(t *testing.T) {
	srv := setupTestServer(t, &fakeBackend{signInErr: errors.Forbidden("access denied")})

	rec := do(t, srv, "POST", "/api/auth/signin", SignInRequest{Email: "x@y.z", Password: "pw"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access denied", decode[ErrorResponse](t, rec).Message)
}
