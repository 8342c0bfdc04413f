// Package action defines the typed descriptors carried in inline-button callbacks.
//
// Payloads are short colon-separated strings (Telegram limits callback data to 64 bytes):
//
//	home | menu | create | noop
//	nav:<all|my>:<prev|next|at>:<index>
//	sub:<event id>:<index>
//	unsub:<event id>:<index>
//	edit:<event id>
//	del:<event id>
//
// Decode is the only place that parses payload text; everything downstream works with Action.
package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindHome
	KindMenu
	KindCreate
	KindNoop
	KindNavigate
	KindSubscribe
	KindUnsubscribe
	KindEdit
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindMenu:
		return "menu"
	case KindCreate:
		return "create"
	case KindNoop:
		return "noop"
	case KindNavigate:
		return "nav"
	case KindSubscribe:
		return "sub"
	case KindUnsubscribe:
		return "unsub"
	case KindEdit:
		return "edit"
	case KindDelete:
		return "del"
	}
	return "unknown"
}

type Scope int

const (
	ScopeAll Scope = iota
	ScopeMine
)

func (s Scope) String() string {
	if s == ScopeMine {
		return "my"
	}
	return "all"
}

type Direction int

const (
	DirAbsolute Direction = iota
	DirPrev
	DirNext
)

func (d Direction) String() string {
	switch d {
	case DirPrev:
		return "prev"
	case DirNext:
		return "next"
	}
	return "at"
}

// Action is a decoded callback. Only the fields relevant to Kind are set.
type Action struct {
	Kind      Kind
	Scope     Scope
	Direction Direction
	Index     int
	EventID   int64
}

var ErrMalformed = errors.New("malformed callback payload")

func Home() Action   { return Action{Kind: KindHome} }
func Menu() Action   { return Action{Kind: KindMenu} }
func Create() Action { return Action{Kind: KindCreate} }
func Noop() Action   { return Action{Kind: KindNoop} }

func Navigate(scope Scope, dir Direction, index int) Action {
	return Action{Kind: KindNavigate, Scope: scope, Direction: dir, Index: index}
}

func Subscribe(eventID int64, index int) Action {
	return Action{Kind: KindSubscribe, Scope: ScopeAll, EventID: eventID, Index: index}
}

func Unsubscribe(eventID int64, index int) Action {
	return Action{Kind: KindUnsubscribe, Scope: ScopeAll, EventID: eventID, Index: index}
}

func Edit(eventID int64) Action   { return Action{Kind: KindEdit, Scope: ScopeMine, EventID: eventID} }
func Delete(eventID int64) Action { return Action{Kind: KindDelete, Scope: ScopeMine, EventID: eventID} }

// Encode renders the action as callback data.
func (a Action) Encode() string {
	switch a.Kind {
	case KindNavigate:
		return fmt.Sprintf("nav:%s:%s:%d", a.Scope, a.Direction, a.Index)
	case KindSubscribe, KindUnsubscribe:
		return fmt.Sprintf("%s:%d:%d", a.Kind, a.EventID, a.Index)
	case KindEdit, KindDelete:
		return fmt.Sprintf("%s:%d", a.Kind, a.EventID)
	}
	return a.Kind.String()
}

// Decode parses callback data produced by Encode.
func Decode(data string) (Action, error) {
	parts := strings.Split(data, ":")
	switch parts[0] {
	case "home", "menu", "create", "noop":
		if len(parts) != 1 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		switch parts[0] {
		case "home":
			return Home(), nil
		case "menu":
			return Menu(), nil
		case "create":
			return Create(), nil
		}
		return Noop(), nil

	case "nav":
		if len(parts) != 4 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		var scope Scope
		switch parts[1] {
		case "all":
			scope = ScopeAll
		case "my":
			scope = ScopeMine
		default:
			return Action{}, fmt.Errorf("%w: scope %q", ErrMalformed, parts[1])
		}
		var dir Direction
		switch parts[2] {
		case "prev":
			dir = DirPrev
		case "next":
			dir = DirNext
		case "at":
			dir = DirAbsolute
		default:
			return Action{}, fmt.Errorf("%w: direction %q", ErrMalformed, parts[2])
		}
		index, err := parseIndex(parts[3])
		if err != nil {
			return Action{}, err
		}
		return Navigate(scope, dir, index), nil

	case "sub", "unsub":
		if len(parts) != 3 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Action{}, err
		}
		index, err := parseIndex(parts[2])
		if err != nil {
			return Action{}, err
		}
		if parts[0] == "sub" {
			return Subscribe(id, index), nil
		}
		return Unsubscribe(id, index), nil

	case "edit", "del":
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Action{}, err
		}
		if parts[0] == "edit" {
			return Edit(id), nil
		}
		return Delete(id), nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: index %q", ErrMalformed, s)
	}
	return n, nil
}

func parseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: event id %q", ErrMalformed, s)
	}
	return n, nil
}
