package ui

const (
	LabelShowCommands = "📎Показать команды"
	LabelAllEvents    = "📋Список мероприятий"
	LabelMyEvents     = "📋Мои мероприятия"
	LabelCreate       = "📝Создать мероприятие"
	LabelHome         = "🏠Домой"
	LabelSubscribe    = "✍️Записаться"
	LabelUnsubscribe  = "❌Отписаться"
	LabelLink         = "🔗Ссылка"
	LabelEdit         = "✏️Редактировать"
	LabelDelete       = "🗑️Удалить"
	LabelPrev         = "⬅️Предыдущее"
	LabelNext         = "Следующее➡️"
)

const (
	TextWelcome = "Привет! Я бот для создания и управления мероприятиями в ИТМО.\n\n" +
		"Здесь можно посмотреть все мероприятия и записаться на них, " +
		"создать своё мероприятие и управлять созданными."
	TextMenu = "Выберите действие:"
	TextHelp = "Команды:\n" +
		"/start - начать взаимодействие с ботом\n" +
		"/events - список мероприятий\n" +
		"/my - мои мероприятия\n" +
		"/create - создать мероприятие\n" +
		"/home - прервать ввод и вернуться в меню\n" +
		"/help - справка"

	TextNoEvents         = "Пока нет ни одного мероприятия."
	TextNoOwnEvents      = "Вы ещё не создали ни одного мероприятия."
	TextNoPrevious       = "Это первое мероприятие в списке."
	TextNoNext           = "Больше мероприятий нет."
	TextListChanged      = "Список изменился. Откройте его заново."
	TextAlreadySubscribe = "Вы уже записаны на это мероприятие."
	TextSubscribed       = "Вы записаны!"
	TextUnsubscribed     = "Запись отменена."
	TextEventNotFound    = "Мероприятие не найдено. Возможно, его уже удалили."
	TextEventDeleted     = "Мероприятие удалено."
	TextEventCreated     = "✅ Мероприятие создано!"
	TextEventUpdated     = "✅ Мероприятие обновлено!"
	TextFailure          = "Произошла ошибка. Попробуйте ещё раз позже."
	TextFlowFailure      = "Не удалось сохранить мероприятие. Начните заново."
	TextUnknownInput     = "Я не понял сообщение. Используйте /help или кнопки меню."
	TextUnknownCommand   = "Неизвестная команда. Используйте /help."
)
