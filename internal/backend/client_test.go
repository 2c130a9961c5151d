package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogenes-ai-code/gtadmin/internal/config"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

const (
	testAnonKey = "anon-key"
	householdID = "5b0c2d8e-3f4a-4c61-9d2e-7a1b0c9d8e7f"
	configID    = "0f1e2d3c-4b5a-4697-8877-665544332211"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newClient(ts.URL+"/", testAnonKey, []string{"Admin@Example.com"}, ts.Client(), logger)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(config.BackendConfig{}, nil)
	assert.True(t, errors.Is(err, errors.KindUnavailable))

	c, err := New(config.BackendConfig{URL: "https://x.test", AllowedEmails: []string{"a@b.c"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestIsAllowedEmail(t *testing.T) {
	c := newClient("https://x.test", "", []string{"dirk.bakker@gmx.net"}, http.DefaultClient, nil)

	assert.True(t, c.IsAllowedEmail("dirk.bakker@gmx.net"))
	assert.True(t, c.IsAllowedEmail("Dirk.Bakker@GMX.net"))
	assert.True(t, c.IsAllowedEmail(" dirk.bakker@gmx.net "))
	assert.False(t, c.IsAllowedEmail("someone@gmx.net"))
	assert.False(t, c.IsAllowedEmail(""))
}

func TestSignIn_Allowed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))

		var body passwordGrant
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@example.com", body.Email)
		assert.Equal(t, "secret", body.Password)

		writeJSON(t, w, http.StatusOK, Session{
			AccessToken: "tok", TokenType: "bearer", ExpiresIn: 3600,
			User: User{ID: "u1", Email: "admin@example.com"},
		})
	})

	sess, err := c.SignIn(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.AccessToken)
	require.NotNil(t, c.Session())
	assert.Equal(t, "admin@example.com", c.Session().User.Email)
}

func TestSignIn_NotAllowedSignsOut(t *testing.T) {
	var logouts int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			writeJSON(t, w, http.StatusOK, Session{AccessToken: "tok", User: User{Email: "intruder@example.com"}})
		case "/auth/v1/logout":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			logouts++
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	sess, err := c.SignIn(context.Background(), "intruder@example.com", "pw")
	assert.Nil(t, sess)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindForbidden))
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, 1, logouts)
	assert.Nil(t, c.Session())
}

func TestSignIn_BadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{
			"error": "invalid_grant", "error_description": "Invalid login credentials",
		})
	})

	_, err := c.SignIn(context.Background(), "admin@example.com", "wrong")
	assert.True(t, errors.Is(err, errors.KindUnauthorized))
	assert.Nil(t, c.Session())

	_, err = c.SignIn(context.Background(), "", "x")
	assert.True(t, errors.Is(err, errors.KindInvalidArgs))
}

func TestSignOut_WithoutSessionIsNoop(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	assert.NoError(t, c.SignOut(context.Background()))
}

func TestHouseholds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/households", r.URL.Path)
		assert.Equal(t, "name.asc", r.URL.Query().Get("order"))
		assert.Contains(t, r.URL.Query().Get("select"), "hue_config(id,user_email)")
		assert.Equal(t, "Bearer "+testAnonKey, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": "h1", "name": "Bakker", "config_id": "c1", "created_at": "2025-01-02T10:00:00Z",
			 "updated_at": "2025-01-03T10:00:00Z", "hue_config": {"id": "c1", "user_email": "a@b.c"}},
			{"id": "h2", "name": "Jansen", "config_id": null, "created_at": "2025-02-01T10:00:00Z",
			 "updated_at": "2025-02-01T10:00:00Z", "hue_config": null}
		]`)
	})

	hs, err := c.Households(context.Background())
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "Bakker", hs[0].Name)
	require.NotNil(t, hs[0].HueConfig)
	assert.Equal(t, "a@b.c", hs[0].HueConfig.UserEmail)
	assert.Nil(t, hs[1].ConfigID)
	assert.Nil(t, hs[1].HueConfig)
}

func TestHouseholds_EmptyIsNotNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	hs, err := c.Households(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, hs)
	assert.Empty(t, hs)
}

func TestMembers_JoinsDisplayNames(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/household_members":
			assert.Equal(t, "eq."+householdID, r.URL.Query().Get("household_id"))
			io.WriteString(w, `[
				{"id": "m1", "household_id": "`+householdID+`", "user_id": "u1", "role": "owner", "created_at": "2025-01-01T00:00:00Z"},
				{"id": "m2", "household_id": "`+householdID+`", "user_id": "u2", "role": "member", "created_at": "2025-01-01T00:00:00Z"},
				{"id": "m3", "household_id": "`+householdID+`", "user_id": null, "role": "member", "created_at": "2025-01-01T00:00:00Z"}
			]`)
		case "/rest/v1/user_profiles":
			assert.Equal(t, "in.(u1,u2)", r.URL.Query().Get("id"))
			io.WriteString(w, `[{"id": "u1", "display_name": "Dirk"}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ms, err := c.Members(context.Background(), householdID)
	require.NoError(t, err)
	require.Len(t, ms, 3)
	require.NotNil(t, ms[0].DisplayName)
	assert.Equal(t, "Dirk", *ms[0].DisplayName)
	assert.Nil(t, ms[1].DisplayName)
	assert.Nil(t, ms[2].DisplayName)
}

func TestMembers_ProfileFailureKeepsMembers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/v1/user_profiles" {
			writeJSON(t, w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			return
		}
		io.WriteString(w, `[{"id": "m1", "household_id": "h", "user_id": "u1", "role": "owner", "created_at": "2025-01-01T00:00:00Z"}]`)
	})

	ms, err := c.Members(context.Background(), householdID)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Nil(t, ms[0].DisplayName)
}

func TestMembers_InvalidID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	_, err := c.Members(context.Background(), "1 or 1=1")
	assert.True(t, errors.Is(err, errors.KindInvalidArgs))
}

func TestInvitations_Filters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/v1/household_invitations", r.URL.Path)
		assert.Equal(t, "eq."+householdID, q.Get("household_id"))
		assert.Equal(t, "is.null", q.Get("accepted_at"))
		assert.Equal(t, "gt.2026-10-15T08:00:00Z", q.Get("expires_at"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		io.WriteString(w, `[{"id": "i1", "invited_email": "x@y.z", "role": "member",
			"expires_at": "2026-10-20T00:00:00Z", "accepted_at": null, "created_at": "2026-10-13T00:00:00Z"}]`)
	})
	c.now = func() time.Time { return time.Date(2026, 10, 15, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600)) }

	inv, err := c.Invitations(context.Background(), householdID)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, "x@y.z", inv[0].InvitedEmail)
	assert.Nil(t, inv[0].AcceptedAt)
}

func TestActivitySince(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2026, 3, 2, 15, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2026, 2, 24, 0, 0, 0, 0, loc), ActivitySince(now, 7))
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), ActivitySince(now, 1))
	assert.Equal(t, ActivitySince(now, 7), ActivitySince(now, 0))
}

func TestRoomActivity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/v1/room_activity_hourly", r.URL.Path)
		assert.Equal(t, "eq."+configID, q.Get("config_id"))
		assert.Equal(t, "gte.2026-10-13T00:00:00Z", q.Get("hour"))
		io.WriteString(w, `[{"room_name": "Keuken", "hour": "2026-10-14T07:00:00Z", "total_events": 12}]`)
	})
	c.now = func() time.Time { return time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC) }

	rows, err := c.RoomActivity(context.Background(), configID, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Keuken", rows[0].RoomName)
	assert.Equal(t, 12, rows[0].TotalEvents)
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		kind   errors.Kind
	}{
		{http.StatusUnauthorized, errors.KindUnauthorized},
		{http.StatusForbidden, errors.KindForbidden},
		{http.StatusNotFound, errors.KindNotFound},
		{http.StatusBadRequest, errors.KindInvalidArgs},
		{http.StatusBadGateway, errors.KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, map[string]string{"message": "nope"})
			})
			_, err := c.Households(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.GetKind(err))
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	c := newClient(ts.URL, testAnonKey, nil, http.DefaultClient, nil)

	_, err := c.Households(context.Background())
	assert.True(t, errors.Is(err, errors.KindUnavailable))
}
