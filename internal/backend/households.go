package backend

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

// DefaultActivityDays is the window of RoomActivity when none is given.
const DefaultActivityDays = 7

// HueConfig is the bridge configuration a household is linked to.
type HueConfig struct {
	ID        string `json:"id"`
	UserEmail string `json:"user_email"`
}

// Household is a home registered with the service.
type Household struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ConfigID  *string    `json:"config_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	HueConfig *HueConfig `json:"hue_config"`
}

// Member is a user of a household, joined with the profile display name.
type Member struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"household_id"`
	UserID      *string   `json:"user_id"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	DisplayName *string   `json:"display_name"`
}

// Invitation is an invite to join a household.
type Invitation struct {
	ID           string     `json:"id"`
	InvitedEmail string     `json:"invited_email"`
	Role         string     `json:"role"`
	ExpiresAt    time.Time  `json:"expires_at"`
	AcceptedAt   *time.Time `json:"accepted_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RoomActivity is one hourly bucket of sensor events in a room.
type RoomActivity struct {
	RoomName    string    `json:"room_name"`
	Hour        time.Time `json:"hour"`
	TotalEvents int       `json:"total_events"`
}

type profile struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name"`
}

// checkID rejects ids that are not UUIDs before they reach a filter.
func checkID(what, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.InvalidArgs("invalid %s id %q", what, id).WithDetails(what+"_id", id)
	}
	return nil
}

// Households returns all households ordered by name, each with its
// linked bridge configuration.
func (c *Client) Households(ctx context.Context) ([]*Household, error) {
	q := url.Values{}
	q.Set("select", "id,name,config_id,created_at,updated_at,hue_config(id,user_email)")
	q.Set("order", "name.asc")

	out := []*Household{}
	if err := c.selectRows(ctx, "list households", "households", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Members returns the members of a household. Display names come from the
// user profiles; a failed profile lookup leaves them empty.
func (c *Client) Members(ctx context.Context, householdID string) ([]*Member, error) {
	if err := checkID("household", householdID); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("select", "id,household_id,user_id,role,created_at")
	q.Set("household_id", "eq."+householdID)

	members := []*Member{}
	if err := c.selectRows(ctx, "list members", "household_members", q, &members); err != nil {
		return nil, err
	}

	var userIDs []string
	for _, m := range members {
		if m.UserID != nil && *m.UserID != "" {
			userIDs = append(userIDs, *m.UserID)
		}
	}
	if len(userIDs) == 0 {
		return members, nil
	}

	pq := url.Values{}
	pq.Set("select", "id,display_name")
	pq.Set("id", "in.("+strings.Join(userIDs, ",")+")")

	var profiles []profile
	if err := c.selectRows(ctx, "list profiles", "user_profiles", pq, &profiles); err != nil {
		c.logger.Warn("profile lookup failed", "household", householdID, "error", err)
		return members, nil
	}
	names := make(map[string]*string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.DisplayName
	}
	for _, m := range members {
		if m.UserID != nil {
			m.DisplayName = names[*m.UserID]
		}
	}
	return members, nil
}

// Invitations returns the pending, unexpired invitations of a household,
// newest first.
func (c *Client) Invitations(ctx context.Context, householdID string) ([]*Invitation, error) {
	if err := checkID("household", householdID); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("select", "id,invited_email,role,expires_at,accepted_at,created_at")
	q.Set("household_id", "eq."+householdID)
	q.Set("accepted_at", "is.null")
	q.Set("expires_at", "gt."+c.now().UTC().Format(time.RFC3339))
	q.Set("order", "created_at.desc")

	out := []*Invitation{}
	if err := c.selectRows(ctx, "list invitations", "household_invitations", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActivitySince returns local midnight of the first day of a window of
// days ending today.
func ActivitySince(now time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultActivityDays
	}
	d := now.AddDate(0, 0, -(days - 1))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
}

// RoomActivity returns the hourly activity buckets of a bridge
// configuration for the last days days, today included. days <= 0 means
// DefaultActivityDays.
func (c *Client) RoomActivity(ctx context.Context, configID string, days int) ([]*RoomActivity, error) {
	if err := checkID("config", configID); err != nil {
		return nil, err
	}
	since := ActivitySince(c.now(), days)

	q := url.Values{}
	q.Set("select", "room_name,hour,total_events")
	q.Set("config_id", "eq."+configID)
	q.Set("hour", "gte."+since.UTC().Format(time.RFC3339))

	out := []*RoomActivity{}
	if err := c.selectRows(ctx, "room activity", "room_activity_hourly", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
