package ui

import (
	"testing"

	"github.com/TheReshkin/events-bot/internal/action"
)

func TestViewEqual(t *testing.T) {
	a := Menu()
	b := Menu()
	if !a.Equal(b) {
		t.Error("одинаковые представления должны совпадать")
	}

	b.Rows[0][0].Label = "другая подпись"
	if a.Equal(b) {
		t.Error("представления с разными кнопками не должны совпадать")
	}

	if a.Equal(MenuWithNotice("готово")) {
		t.Error("представления с разным текстом не должны совпадать")
	}

	short := View{Text: a.Text, Rows: a.Rows[:1]}
	if a.Equal(short) {
		t.Error("представления с разным числом рядов не должны совпадать")
	}
}

func TestPromptOffersHome(t *testing.T) {
	v := Prompt("Введите название")
	if len(v.Rows) != 1 || v.Rows[0][0].Data != action.Home().Encode() {
		t.Errorf("подсказка должна содержать кнопку «Домой», получено %+v", v.Rows)
	}
}
