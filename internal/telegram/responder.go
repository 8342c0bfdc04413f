package telegram

import (
	"context"

	"github.com/TheReshkin/events-bot/internal/ui"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Sender is the subset of *bot.Bot the router talks to.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*tgmodels.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// responder delivers a view and returns the id of the message now showing it.
type responder interface {
	deliver(ctx context.Context, s Sender, chatID int64, view ui.View) (int, error)
}

// freshMessage posts a new message; used for commands and typed input.
type freshMessage struct{}

func (freshMessage) deliver(ctx context.Context, s Sender, chatID int64, view ui.View) (int, error) {
	msg, err := s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        view.Text,
		ReplyMarkup: keyboard(view),
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// editInPlace rewrites the message whose button was pressed.
type editInPlace struct {
	messageID int
}

func (e editInPlace) deliver(ctx context.Context, s Sender, chatID int64, view ui.View) (int, error) {
	_, err := s.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   e.messageID,
		Text:        view.Text,
		ReplyMarkup: keyboard(view),
	})
	if err != nil {
		return 0, err
	}
	return e.messageID, nil
}

// keyboard converts view rows into an inline keyboard. A view without rows gets no markup.
func keyboard(view ui.View) tgmodels.ReplyMarkup {
	if len(view.Rows) == 0 {
		return nil
	}
	rows := make([][]tgmodels.InlineKeyboardButton, 0, len(view.Rows))
	for _, row := range view.Rows {
		buttons := make([]tgmodels.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgmodels.InlineKeyboardButton{Text: b.Label, URL: b.URL})
				continue
			}
			buttons = append(buttons, tgmodels.InlineKeyboardButton{Text: b.Label, CallbackData: b.Data})
		}
		rows = append(rows, buttons)
	}
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: rows}
}
