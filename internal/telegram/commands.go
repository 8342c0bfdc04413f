package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const (
	cmdStart  = "/start"
	cmdHelp   = "/help"
	cmdCreate = "/create"
	cmdEvents = "/events"
	cmdMy     = "/my"
	cmdHome   = "/home"
)

// Commands is the command list published to Telegram.
var Commands = []tgmodels.BotCommand{
	{Command: "start", Description: "Начать работу с ботом"},
	{Command: "events", Description: "Список мероприятий"},
	{Command: "my", Description: "Мои мероприятия"},
	{Command: "create", Description: "Создать мероприятие"},
	{Command: "home", Description: "Вернуться в меню"},
	{Command: "help", Description: "Справка"},
}

type CommandSetter interface {
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

// RegisterCommands publishes Commands so clients can suggest them.
func RegisterCommands(ctx context.Context, s CommandSetter, logger *zap.Logger) error {
	logger.Info("Устанавливаем базовые команды", zap.Int("count", len(Commands)))
	if _, err := s.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: Commands}); err != nil {
		logger.Error("Ошибка при установке команд", zap.Error(err))
		return err
	}
	logger.Info("Команды успешно установлены")
	return nil
}

func knownCommand(command string) bool {
	for _, c := range Commands {
		if "/"+c.Command == command {
			return true
		}
	}
	return false
}

// normalizeCommand удаляет суффикс @bot_username и аргументы из команды
func normalizeCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	command, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(command)
}
