package flow

import (
	"context"
	"errors"
	"strings"

	"github.com/TheReshkin/events-bot/internal/metrics"
	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/TheReshkin/events-bot/internal/ui"
	"go.uber.org/zap"
)

// EventStore is the part of services.EventService the flows write through.
type EventStore interface {
	Create(ctx context.Context, event models.Event) (int64, error)
	Update(ctx context.Context, event models.Event) error
	GetOwned(ctx context.Context, eventID, ownerID int64) (*models.Event, error)
}

type ReplyKind int

const (
	// ReplyPrompt asks for the next field.
	ReplyPrompt ReplyKind = iota
	// ReplyRetry repeats the current step after rejected input.
	ReplyRetry
	// ReplyCommitted means the event was written and the flow is over.
	ReplyCommitted
	// ReplyFailed means the write failed and the flow was dropped.
	ReplyFailed
)

type Reply struct {
	Kind    ReplyKind
	Step    Step
	EventID int64
	View    ui.View
}

type Machine struct {
	sessions *Sessions
	events   EventStore
	logger   *zap.Logger
}

func NewMachine(sessions *Sessions, events EventStore, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		sessions: sessions,
		events:   events,
		logger:   logger.With(zap.String("component", "flow")),
	}
}

// Active reports whether the user is in the middle of a flow.
func (m *Machine) Active(userID int64) bool {
	_, ok := m.sessions.Get(userID)
	return ok
}

// StartCreate begins a fresh create flow, discarding any flow already in progress.
func (m *Machine) StartCreate(userID int64) Reply {
	f := Form{Mode: ModeCreate, Step: StepName}
	if m.sessions.Delete(userID) {
		m.logger.Debug("Перезапуск сценария", zap.Int64("user_id", userID))
	}
	m.sessions.Put(userID, f)
	m.logger.Info("Начат сценарий создания", zap.Int64("user_id", userID))
	return Reply{Kind: ReplyPrompt, Step: StepName, View: ui.Prompt(promptFor(f))}
}

// StartEdit begins an edit flow for an event owned by userID. Missing or foreign events yield
// models.ErrEventNotFound and leave any existing flow untouched.
func (m *Machine) StartEdit(ctx context.Context, userID, eventID int64) (Reply, error) {
	event, err := m.events.GetOwned(ctx, eventID, userID)
	if err != nil {
		return Reply{}, err
	}
	f := Form{Mode: ModeEdit, Step: StepName, EventID: eventID, Current: event}
	m.sessions.Put(userID, f)
	m.logger.Info("Начат сценарий редактирования",
		zap.Int64("user_id", userID),
		zap.Int64("event_id", eventID))
	return Reply{Kind: ReplyPrompt, Step: StepName, EventID: eventID, View: ui.Prompt(promptFor(f))}, nil
}

// Cancel drops the user's flow. It reports whether there was one.
func (m *Machine) Cancel(userID int64) bool {
	f, ok := m.sessions.Get(userID)
	if !ok {
		return false
	}
	m.sessions.Delete(userID)
	metrics.FlowResultCounter.WithLabelValues(f.Mode.String(), "cancelled").Inc()
	m.logger.Info("Сценарий прерван",
		zap.Int64("user_id", userID),
		zap.Stringer("mode", f.Mode),
		zap.Stringer("step", f.Step))
	return true
}

// Handle feeds one text message into the user's flow. It returns false when the user has no flow.
func (m *Machine) Handle(ctx context.Context, userID int64, text string) (Reply, bool) {
	f, ok := m.sessions.Get(userID)
	if !ok {
		return Reply{}, false
	}

	value := strings.TrimSpace(text)
	if value == "" {
		return m.retry(f, retryEmpty), true
	}

	switch f.Step {
	case StepName:
		f.Title = value
	case StepDescription:
		f.Description = value
	case StepDate:
		occursAt, err := models.ParseEventDate(value)
		if err != nil {
			m.logger.Debug("Неверная дата", zap.Int64("user_id", userID), zap.String("input", value))
			return m.retry(f, retryDate), true
		}
		f.OccursAt = occursAt
	case StepLocation:
		f.Location = value
	case StepLink:
		if !models.IsValidLink(value) {
			m.logger.Debug("Неверная ссылка", zap.Int64("user_id", userID), zap.String("input", value))
			return m.retry(f, retryLink), true
		}
		f.Link = value
		return m.commit(ctx, userID, f), true
	}

	f.Step++
	m.sessions.Put(userID, f)
	return Reply{Kind: ReplyPrompt, Step: f.Step, EventID: f.EventID, View: ui.Prompt(promptFor(f))}, true
}

func (m *Machine) retry(f Form, reason string) Reply {
	return Reply{
		Kind:    ReplyRetry,
		Step:    f.Step,
		EventID: f.EventID,
		View:    ui.Prompt(reason + " " + promptFor(f)),
	}
}

// commit writes the collected form. The session is dropped whatever the outcome.
func (m *Machine) commit(ctx context.Context, userID int64, f Form) Reply {
	m.sessions.Delete(userID)
	event := f.event(userID)

	var err error
	eventID := f.EventID
	if f.Mode == ModeEdit {
		err = m.events.Update(ctx, event)
	} else {
		eventID, err = m.events.Create(ctx, event)
	}
	if err != nil {
		metrics.FlowResultCounter.WithLabelValues(f.Mode.String(), "failed").Inc()
		m.logger.Error("Ошибка сохранения события",
			zap.Int64("user_id", userID),
			zap.Stringer("mode", f.Mode),
			zap.Int64("event_id", f.EventID),
			zap.Error(err))
		text := ui.TextFlowFailure
		if errors.Is(err, models.ErrEventNotFound) {
			text = ui.TextEventNotFound
		}
		return Reply{Kind: ReplyFailed, Step: StepLink, EventID: f.EventID, View: ui.MenuWithNotice(text)}
	}

	metrics.FlowResultCounter.WithLabelValues(f.Mode.String(), "committed").Inc()
	m.logger.Info("Сценарий завершён",
		zap.Int64("user_id", userID),
		zap.Stringer("mode", f.Mode),
		zap.Int64("event_id", eventID))

	notice := ui.TextEventCreated
	if f.Mode == ModeEdit {
		notice = ui.TextEventUpdated
	}
	return Reply{Kind: ReplyCommitted, Step: StepLink, EventID: eventID, View: ui.MenuWithNotice(notice)}
}
