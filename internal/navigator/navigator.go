// Package navigator pages through event collections one event at a time.
//
// The collection is fetched again on every request and addressed by index, so a request
// built from an old keyboard may point past the end. Such requests are answered with a
// boundary notice instead of a new view.
package navigator

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheReshkin/events-bot/internal/action"
	"github.com/TheReshkin/events-bot/internal/metrics"
	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/TheReshkin/events-bot/internal/ui"
	"go.uber.org/zap"
)

// EventSource is the read side of services.EventService.
type EventSource interface {
	List(ctx context.Context) ([]models.Event, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Event, error)
	IsSubscribed(ctx context.Context, eventID, userID int64) (bool, error)
	CountParticipants(ctx context.Context, eventID int64) (int, error)
}

type Outcome int

const (
	// OutcomeRendered carries a new view to display.
	OutcomeRendered Outcome = iota
	// OutcomeUnchanged means the computed view equals the one on screen.
	OutcomeUnchanged
	// OutcomeBoundary means the move left the collection; only Notice is set.
	OutcomeBoundary
	// OutcomeEmpty means the collection has no events.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRendered:
		return "rendered"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeBoundary:
		return "boundary"
	case OutcomeEmpty:
		return "empty"
	}
	return "unknown"
}

type Request struct {
	UserID    int64
	Scope     action.Scope
	Direction action.Direction
	Index     int
	// Current is the view on screen, if known.
	Current *ui.View
}

type Result struct {
	Outcome Outcome
	View    ui.View
	Index   int
	EventID int64
	Notice  string
}

type Navigator struct {
	events EventSource
	logger *zap.Logger
}

func New(events EventSource, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{
		events: events,
		logger: logger.With(zap.String("component", "navigator")),
	}
}

// Show computes the view for the requested position.
func (n *Navigator) Show(ctx context.Context, req Request) (Result, error) {
	res, err := n.show(ctx, req)
	if err != nil {
		return Result{}, err
	}
	metrics.NavigationCounter.WithLabelValues(req.Scope.String(), res.Outcome.String()).Inc()
	n.logger.Debug("Навигация по списку",
		zap.Int64("user_id", req.UserID),
		zap.Stringer("scope", req.Scope),
		zap.Stringer("direction", req.Direction),
		zap.Int("requested_index", req.Index),
		zap.Int("index", res.Index),
		zap.Stringer("outcome", res.Outcome))
	return res, nil
}

func (n *Navigator) show(ctx context.Context, req Request) (Result, error) {
	events, err := n.collection(ctx, req)
	if err != nil {
		return Result{}, err
	}

	if len(events) == 0 {
		return settle(req, Result{Outcome: OutcomeEmpty, View: emptyView(req.Scope)}), nil
	}

	index, ok := target(req, len(events))
	if !ok {
		var notice string
		switch {
		case req.Index >= len(events):
			notice = ui.TextListChanged
		case req.Direction == action.DirPrev:
			notice = ui.TextNoPrevious
		default:
			notice = ui.TextNoNext
		}
		return Result{Outcome: OutcomeBoundary, Index: req.Index, Notice: notice}, nil
	}

	event := events[index]
	view, err := n.render(ctx, req, event, index, len(events))
	if err != nil {
		return Result{}, err
	}
	return settle(req, Result{Outcome: OutcomeRendered, View: view, Index: index, EventID: event.EventID}), nil
}

func (n *Navigator) collection(ctx context.Context, req Request) ([]models.Event, error) {
	if req.Scope == action.ScopeMine {
		return n.events.ListByOwner(ctx, req.UserID)
	}
	return n.events.List(ctx)
}

// target resolves the requested move against a collection of size count.
// Relative moves off either end are refused; absolute positions are clamped.
func target(req Request, count int) (int, bool) {
	switch req.Direction {
	case action.DirPrev:
		i := req.Index - 1
		return i, i >= 0 && i < count
	case action.DirNext:
		i := req.Index + 1
		return i, i >= 0 && i < count
	}
	i := req.Index
	if i >= count {
		i = count - 1
	}
	if i < 0 {
		i = 0
	}
	return i, true
}

func settle(req Request, res Result) Result {
	if req.Current != nil && req.Current.Equal(res.View) {
		res.Outcome = OutcomeUnchanged
	}
	return res
}

func emptyView(scope action.Scope) ui.View {
	text := ui.TextNoEvents
	if scope == action.ScopeMine {
		text = ui.TextNoOwnEvents
	}
	return ui.View{Text: text, Rows: [][]ui.Button{ui.HomeRow()}}
}

func (n *Navigator) render(ctx context.Context, req Request, event models.Event, index, count int) (ui.View, error) {
	participants, err := n.events.CountParticipants(ctx, event.EventID)
	if err != nil {
		return ui.View{}, err
	}
	text := describe(event, participants, index, count)

	var rows [][]ui.Button
	nav := navRow(req.Scope, index, count)

	if req.Scope == action.ScopeMine {
		rows = append(rows,
			[]ui.Button{ui.CallbackButton(ui.LabelEdit, action.Edit(event.EventID))},
			[]ui.Button{ui.CallbackButton(ui.LabelDelete, action.Delete(event.EventID))},
			ui.HomeRow(),
		)
		if len(nav) > 0 {
			rows = append(rows, nav)
		}
		return ui.View{Text: text, Rows: rows}, nil
	}

	subscribed, err := n.events.IsSubscribed(ctx, event.EventID, req.UserID)
	if err != nil {
		return ui.View{}, err
	}
	toggle := ui.CallbackButton(ui.LabelSubscribe, action.Subscribe(event.EventID, index))
	if subscribed {
		toggle = ui.CallbackButton(ui.LabelUnsubscribe, action.Unsubscribe(event.EventID, index))
	}
	rows = append(rows,
		[]ui.Button{toggle},
		[]ui.Button{ui.URLButton(ui.LabelLink, models.LinkURL(event.Link))},
	)
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, ui.HomeRow())
	return ui.View{Text: text, Rows: rows}, nil
}

func navRow(scope action.Scope, index, count int) []ui.Button {
	var row []ui.Button
	if index > 0 {
		row = append(row, ui.CallbackButton(ui.LabelPrev, action.Navigate(scope, action.DirPrev, index)))
	}
	if index < count-1 {
		row = append(row, ui.CallbackButton(ui.LabelNext, action.Navigate(scope, action.DirNext, index)))
	}
	return row
}

func describe(e models.Event, participants, index, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📌 %s\n\n", e.Title)
	fmt.Fprintf(&b, "📝 %s\n", e.Description)
	fmt.Fprintf(&b, "📅 %s\n", models.FormatEventDate(e.OccursAt))
	fmt.Fprintf(&b, "📍 %s\n", e.Location)
	fmt.Fprintf(&b, "🔗 %s\n", e.Link)
	fmt.Fprintf(&b, "👥 Участников: %d\n\n", participants)
	fmt.Fprintf(&b, "%d из %d", index+1, count)
	return b.String()
}
