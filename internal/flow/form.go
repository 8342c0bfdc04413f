// Package flow implements the guided create and edit conversations.
//
// A flow collects the five event fields one message at a time:
//
//	name → description → date → location → link → committed
//
// The collected form lives only in memory and is written to the store once, after the
// link step succeeds.
package flow

import (
	"sync"
	"time"

	"github.com/TheReshkin/events-bot/internal/models"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

type Step int

const (
	StepName Step = iota
	StepDescription
	StepDate
	StepLocation
	StepLink
)

func (s Step) String() string {
	switch s {
	case StepName:
		return "name"
	case StepDescription:
		return "description"
	case StepDate:
		return "date"
	case StepLocation:
		return "location"
	case StepLink:
		return "link"
	}
	return "unknown"
}

// Form is the in-progress state of one user's flow.
type Form struct {
	Mode    Mode
	Step    Step
	EventID int64 // edit only

	Title       string
	Description string
	OccursAt    time.Time
	Location    string
	Link        string

	// Current is the event being edited, used to show existing values in prompts.
	Current *models.Event
}

func (f Form) event(ownerID int64) models.Event {
	return models.Event{
		EventID:     f.EventID,
		OwnerID:     ownerID,
		Title:       f.Title,
		Description: f.Description,
		OccursAt:    f.OccursAt,
		Location:    f.Location,
		Link:        f.Link,
	}
}

// Sessions holds at most one form per user.
type Sessions struct {
	mu    sync.Mutex
	forms map[int64]Form
}

func NewSessions() *Sessions {
	return &Sessions{forms: make(map[int64]Form)}
}

func (s *Sessions) Get(userID int64) (Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[userID]
	return f, ok
}

func (s *Sessions) Put(userID int64, f Form) {
	s.mu.Lock()
	s.forms[userID] = f
	s.mu.Unlock()
}

func (s *Sessions) Delete(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.forms[userID]
	delete(s.forms, userID)
	return ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}
