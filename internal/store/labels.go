package store

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// Labels returns copies of the label dictionary.
func (s *Store) Labels() []*models.Label {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Label, 0, len(s.state.Labels))
	for _, l := range s.state.Labels {
		c := *l
		out = append(out, &c)
	}
	return out
}

// Label returns a copy of the label with the given id, or nil.
func (s *Store) Label(id string) *models.Label {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.labelLocked(id)
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// AddLabel adds a label to the dictionary. Names are unique ignoring case.
func (s *Store) AddLabel(name, color string) (*models.Label, error) {
	l := &models.Label{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Color: strings.ToLower(color),
	}
	if err := l.Validate(); err != nil {
		return nil, errors.InvalidArgs("%s", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.labelByNameLocked(l.Name) != nil {
		return nil, errors.InvalidArgs("label %q already exists", l.Name)
	}
	s.state.Labels = append(s.state.Labels, l)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	c := *l
	return &c, nil
}

func (s *Store) labelByNameLocked(name string) *models.Label {
	for _, l := range s.state.Labels {
		if strings.EqualFold(l.Name, name) {
			return l
		}
	}
	return nil
}

// UpdateLabel renames or recolors a label. Returns nil, nil if the label
// does not exist.
func (s *Store) UpdateLabel(id string, patch models.LabelPatch) (*models.Label, error) {
	if err := patch.Validate(); err != nil {
		return nil, errors.InvalidArgs("%s", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.labelLocked(id)
	if l == nil {
		return nil, nil
	}
	if patch.Name != nil {
		if other := s.labelByNameLocked(strings.TrimSpace(*patch.Name)); other != nil && other.ID != id {
			return nil, errors.InvalidArgs("label %q already exists", other.Name)
		}
	}
	patch.Apply(l)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	c := *l
	return &c, nil
}

// DeleteLabel removes a label and strips it from every ticket's label set.
// Nothing else about the tickets changes. Returns false if the label does
// not exist.
func (s *Store) DeleteLabel(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.state.Labels, func(l *models.Label) bool { return l.ID == id })
	if idx < 0 {
		return false, nil
	}
	s.state.Labels = slices.Delete(s.state.Labels, idx, idx+1)

	for _, t := range s.state.Tickets {
		t.Labels = slices.DeleteFunc(t.Labels, func(l string) bool { return l == id })
	}

	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// ToggleTicketLabel adds the label to the ticket, or removes it if already
// present. Returns nil, nil if the ticket does not exist.
func (s *Store) ToggleTicketLabel(ticketID int64, labelID string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticketLocked(ticketID)
	if t == nil {
		return nil, nil
	}
	if t.HasLabel(labelID) {
		t.Labels = slices.DeleteFunc(t.Labels, func(l string) bool { return l == labelID })
	} else {
		if s.labelLocked(labelID) == nil {
			return nil, errors.InvalidArgs("unknown label %q", labelID)
		}
		t.Labels = append(t.Labels, labelID)
	}

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}
