// Package telegram connects the bot's components to Telegram updates.
//
// The router decodes every update once: commands by name, button presses through
// action.Decode. It then picks how to answer. Commands and typed input get a fresh
// message, button presses edit the message they came from.
package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/TheReshkin/events-bot/internal/action"
	"github.com/TheReshkin/events-bot/internal/flow"
	"github.com/TheReshkin/events-bot/internal/metrics"
	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/TheReshkin/events-bot/internal/navigator"
	"github.com/TheReshkin/events-bot/internal/ui"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type Users interface {
	Ensure(ctx context.Context, userID int64) error
}

// Events is the write side of services.EventService used by button actions.
type Events interface {
	Subscribe(ctx context.Context, eventID, userID int64) error
	Unsubscribe(ctx context.Context, eventID, userID int64) error
	Delete(ctx context.Context, eventID, ownerID int64) error
}

type Router struct {
	users   Users
	events  Events
	flows   *flow.Machine
	nav     *navigator.Navigator
	screens *screens
	logger  *zap.Logger
}

func NewRouter(users Users, events Events, flows *flow.Machine, nav *navigator.Navigator, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		users:   users,
		events:  events,
		flows:   flows,
		nav:     nav,
		screens: newScreens(),
		logger:  logger.With(zap.String("component", "router")),
	}
}

// Handle is a bot.HandlerFunc.
func (r *Router) Handle(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	r.Dispatch(ctx, b, update)
}

func (r *Router) Dispatch(ctx context.Context, s Sender, update *tgmodels.Update) {
	switch {
	case update.CallbackQuery != nil:
		r.handleCallback(ctx, s, update.CallbackQuery)
	case update.Message != nil:
		r.handleMessage(ctx, s, update.Message)
	default:
		r.logger.Debug("Получено обновление без сообщения")
	}
}

func (r *Router) handleMessage(ctx context.Context, s Sender, msg *tgmodels.Message) {
	chatID := msg.Chat.ID
	userID := chatID
	if msg.From != nil {
		userID = msg.From.ID
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if err := r.users.Ensure(ctx, userID); err != nil {
		r.show(ctx, s, freshMessage{}, chatID, ui.View{Text: ui.TextFailure}, false)
		return
	}

	if strings.HasPrefix(text, "/") {
		r.handleCommand(ctx, s, chatID, userID, normalizeCommand(text))
		return
	}

	reply, ok := r.flows.Handle(ctx, userID, text)
	if !ok {
		r.logger.Debug("Сообщение вне сценария", zap.Int64("user_id", userID))
		r.show(ctx, s, freshMessage{}, chatID, ui.MenuWithNotice(ui.TextUnknownInput), false)
		return
	}
	r.showFlow(ctx, s, freshMessage{}, chatID, reply)
}

func (r *Router) handleCommand(ctx context.Context, s Sender, chatID, userID int64, command string) {
	label := command
	if !knownCommand(command) {
		label = "unknown"
	}
	metrics.CommandUsageCounter.WithLabelValues(label).Inc()
	r.logger.Info("Получена команда",
		zap.String("command", command),
		zap.Int64("user_id", userID))

	fresh := freshMessage{}
	switch command {
	case cmdStart:
		r.flows.Cancel(userID)
		r.show(ctx, s, fresh, chatID, ui.Welcome(), false)
	case cmdHome:
		r.flows.Cancel(userID)
		r.show(ctx, s, fresh, chatID, ui.Menu(), false)
	case cmdHelp:
		r.show(ctx, s, fresh, chatID, ui.View{Text: ui.TextHelp, Rows: [][]ui.Button{ui.HomeRow()}}, false)
	case cmdCreate:
		r.showFlow(ctx, s, fresh, chatID, r.flows.StartCreate(userID))
	case cmdEvents, cmdMy:
		scope := action.ScopeAll
		if command == cmdMy {
			scope = action.ScopeMine
		}
		res, err := r.nav.Show(ctx, navigator.Request{UserID: userID, Scope: scope})
		if err != nil {
			r.show(ctx, s, fresh, chatID, ui.View{Text: ui.TextFailure}, false)
			return
		}
		r.show(ctx, s, fresh, chatID, res.View, false)
	default:
		r.show(ctx, s, fresh, chatID, ui.View{Text: ui.TextUnknownCommand}, false)
	}
}

func (r *Router) handleCallback(ctx context.Context, s Sender, cb *tgmodels.CallbackQuery) {
	var notice string
	defer func() {
		if _, err := s.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cb.ID,
			Text:            notice,
		}); err != nil {
			r.logger.Warn("Не удалось ответить на callback", zap.Error(err))
		}
	}()

	msg := cb.Message.Message
	if msg == nil {
		r.logger.Debug("callback без доступного сообщения", zap.String("data", cb.Data))
		return
	}
	chatID, userID := msg.Chat.ID, cb.From.ID

	a, err := action.Decode(cb.Data)
	if err != nil {
		r.logger.Warn("Неизвестный callback",
			zap.String("data", cb.Data),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return
	}
	metrics.CommandUsageCounter.WithLabelValues(a.Kind.String()).Inc()

	if err := r.users.Ensure(ctx, userID); err != nil {
		notice = ui.TextFailure
		return
	}
	notice = r.perform(ctx, s, editInPlace{messageID: msg.ID}, chatID, userID, a)
}

// perform executes a decoded button action and returns the notice for the callback answer.
func (r *Router) perform(ctx context.Context, s Sender, in editInPlace, chatID, userID int64, a action.Action) string {
	switch a.Kind {
	case action.KindNoop:
		return ""

	case action.KindHome:
		r.flows.Cancel(userID)
		r.show(ctx, s, in, chatID, ui.Menu(), false)
		return ""

	case action.KindMenu:
		r.show(ctx, s, in, chatID, ui.Menu(), false)
		return ""

	case action.KindCreate:
		r.showFlow(ctx, s, in, chatID, r.flows.StartCreate(userID))
		return ""

	case action.KindNavigate:
		return r.navigate(ctx, s, in, chatID, navigator.Request{
			UserID:    userID,
			Scope:     a.Scope,
			Direction: a.Direction,
			Index:     a.Index,
		})

	case action.KindSubscribe, action.KindUnsubscribe:
		notice := ui.TextSubscribed
		var err error
		if a.Kind == action.KindSubscribe {
			err = r.events.Subscribe(ctx, a.EventID, userID)
		} else {
			notice = ui.TextUnsubscribed
			err = r.events.Unsubscribe(ctx, a.EventID, userID)
		}
		switch {
		case errors.Is(err, models.ErrAlreadySubscribed):
			notice = ui.TextAlreadySubscribe
		case errors.Is(err, models.ErrEventNotFound):
			notice = ui.TextEventNotFound
		case err != nil:
			return ui.TextFailure
		}
		if n := r.navigate(ctx, s, in, chatID, navigator.Request{
			UserID: userID,
			Scope:  action.ScopeAll,
			Index:  a.Index,
		}); n != "" {
			return n
		}
		return notice

	case action.KindEdit:
		reply, err := r.flows.StartEdit(ctx, userID, a.EventID)
		switch {
		case errors.Is(err, models.ErrEventNotFound):
			return ui.TextEventNotFound
		case err != nil:
			return ui.TextFailure
		}
		r.showFlow(ctx, s, in, chatID, reply)
		return ""

	case action.KindDelete:
		err := r.events.Delete(ctx, a.EventID, userID)
		switch {
		case errors.Is(err, models.ErrEventNotFound):
			return ui.TextEventNotFound
		case err != nil:
			return ui.TextFailure
		}
		if n := r.navigate(ctx, s, in, chatID, navigator.Request{UserID: userID, Scope: action.ScopeMine}); n != "" {
			return n
		}
		return ui.TextEventDeleted
	}

	r.logger.Warn("Необработанное действие", zap.Stringer("kind", a.Kind))
	return ""
}

// navigate renders a list position in place. Boundary moves and unchanged views leave the message as is.
func (r *Router) navigate(ctx context.Context, s Sender, in editInPlace, chatID int64, req navigator.Request) string {
	req.Current = r.screens.viewOf(chatID, in.messageID)
	res, err := r.nav.Show(ctx, req)
	if err != nil {
		return ui.TextFailure
	}
	switch res.Outcome {
	case navigator.OutcomeBoundary:
		return res.Notice
	case navigator.OutcomeUnchanged:
		return ""
	}
	r.show(ctx, s, in, chatID, res.View, false)
	return ""
}

// showFlow renders a flow reply. A fresh prompt replaces the previous prompt message.
func (r *Router) showFlow(ctx context.Context, s Sender, resp responder, chatID int64, reply flow.Reply) {
	if _, fresh := resp.(freshMessage); fresh {
		if prev, ok := r.screens.get(chatID); ok && prev.prompt {
			if _, err := s.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: prev.messageID}); err != nil {
				r.logger.Debug("Не удалось удалить подсказку",
					zap.Int64("chat_id", chatID),
					zap.Int("message_id", prev.messageID),
					zap.Error(err))
			}
		}
	}
	prompt := reply.Kind == flow.ReplyPrompt || reply.Kind == flow.ReplyRetry
	r.show(ctx, s, resp, chatID, reply.View, prompt)
}

func (r *Router) show(ctx context.Context, s Sender, resp responder, chatID int64, view ui.View, prompt bool) {
	if in, ok := resp.(editInPlace); ok {
		if current := r.screens.viewOf(chatID, in.messageID); current != nil && current.Equal(view) {
			return
		}
	}

	messageID, err := resp.deliver(ctx, s, chatID, view)
	if in, ok := resp.(editInPlace); ok && notModified(err) {
		r.logger.Debug("Сообщение уже актуально",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", in.messageID))
		messageID, err = in.messageID, nil
	}
	if err != nil {
		if _, ok := resp.(editInPlace); !ok {
			r.logger.Error("Ошибка отправки сообщения", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
		r.logger.Warn("Не удалось изменить сообщение, отправляем новое",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		if messageID, err = (freshMessage{}).deliver(ctx, s, chatID, view); err != nil {
			r.logger.Error("Ошибка отправки сообщения", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
	r.screens.put(chatID, screen{messageID: messageID, view: view, prompt: prompt})
}

// notModified reports Telegram's refusal to apply an edit identical to the message content.
func notModified(err error) bool {
	return errors.Is(err, bot.ErrorBadRequest) && strings.Contains(err.Error(), "message is not modified")
}
