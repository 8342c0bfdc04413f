// Package ui describes what the bot shows: a text plus ordered rows of inline buttons.
// Delivery to Telegram lives in package telegram.
package ui

import (
	"github.com/TheReshkin/events-bot/internal/action"
)

// Button is either a callback button (Data) or a link button (URL).
type Button struct {
	Label string
	Data  string
	URL   string
}

type View struct {
	Text string
	Rows [][]Button
}

func CallbackButton(label string, a action.Action) Button {
	return Button{Label: label, Data: a.Encode()}
}

func URLButton(label, url string) Button {
	return Button{Label: label, URL: url}
}

// Equal reports whether two views would look identical to the user.
func (v View) Equal(other View) bool {
	if v.Text != other.Text || len(v.Rows) != len(other.Rows) {
		return false
	}
	for i := range v.Rows {
		if len(v.Rows[i]) != len(other.Rows[i]) {
			return false
		}
		for j := range v.Rows[i] {
			if v.Rows[i][j] != other.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

func HomeButton() Button {
	return CallbackButton(LabelHome, action.Home())
}

func HomeRow() []Button {
	return []Button{HomeButton()}
}

// Welcome is the /start screen.
func Welcome() View {
	return View{
		Text: TextWelcome,
		Rows: [][]Button{
			{CallbackButton(LabelShowCommands, action.Menu())},
		},
	}
}

// Menu lists the main actions; "home" always lands here.
func Menu() View {
	return View{
		Text: TextMenu,
		Rows: [][]Button{
			{CallbackButton(LabelAllEvents, action.Navigate(action.ScopeAll, action.DirAbsolute, 0))},
			{CallbackButton(LabelMyEvents, action.Navigate(action.ScopeMine, action.DirAbsolute, 0))},
			{CallbackButton(LabelCreate, action.Create())},
		},
	}
}

// MenuWithNotice is the menu preceded by a one-line status, e.g. after a flow finishes.
func MenuWithNotice(notice string) View {
	v := Menu()
	v.Text = notice + "\n\n" + v.Text
	return v
}

// Prompt is a flow step: the question plus the home button that aborts the flow.
func Prompt(text string) View {
	return View{Text: text, Rows: [][]Button{HomeRow()}}
}
