package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicketStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TicketStatus
		wantErr bool
	}{
		{"todo", "todo", StatusTodo, false},
		{"in-progress hyphen", "in-progress", StatusInProgress, false},
		{"in_progress underscore", "in_progress", StatusInProgress, false},
		{"uppercase", "DONE", StatusDone, false},
		{"with whitespace", "  todo  ", StatusTodo, false},
		{"invalid", "blocked", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTicketStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "valid:")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("Must")
	require.NoError(t, err)
	assert.Equal(t, PriorityMust, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}

func TestPriorityOrder(t *testing.T) {
	assert.Less(t, PriorityMust.Order(), PriorityShould.Order())
	assert.Less(t, PriorityShould.Order(), PriorityNice.Order())
	assert.Equal(t, 99, Priority("other").Order())
}

func TestCanonicalPhaseStatus(t *testing.T) {
	tests := []struct {
		input PhaseStatus
		want  PhaseStatus
		ok    bool
	}{
		{"niet gestart", PhaseNotStarted, true},
		{"actief", PhaseActive, true},
		{"afgerond", PhaseDone, true},
		{"closed", PhaseDone, true},
		{PhaseActive, PhaseActive, true},
		{"paused", "paused", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			got, ok := CanonicalPhaseStatus(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePhaseStatus(t *testing.T) {
	s, err := ParsePhaseStatus("not_started")
	require.NoError(t, err)
	assert.Equal(t, PhaseNotStarted, s)

	s, err = ParsePhaseStatus("Actief")
	require.NoError(t, err)
	assert.Equal(t, PhaseActive, s)

	_, err = ParsePhaseStatus("paused")
	assert.Error(t, err)
}

func TestParseVerdict(t *testing.T) {
	for _, in := range []string{"no-go", "nogo", "NO_GO"} {
		v, err := ParseVerdict(in)
		require.NoError(t, err, in)
		assert.Equal(t, VerdictNoGo, v)
	}

	v, err := ParseVerdict("go")
	require.NoError(t, err)
	assert.Equal(t, VerdictGo, v)

	_, err = ParseVerdict("maybe")
	assert.Error(t, err)
}
