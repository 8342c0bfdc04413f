package flow

import (
	"fmt"

	"github.com/TheReshkin/events-bot/internal/models"
)

const (
	promptName        = "Введите название мероприятия:"
	promptDescription = "Введите описание мероприятия:"
	promptDate        = "Введите дату и время в формате ДД.ММ.ГГГГ ЧЧ:ММ (например, 01.03.2025 18:30):"
	promptLocation    = "Введите место проведения:"
	promptLink        = "Введите ссылку на мероприятие (например, https://itmo.ru/events):"

	retryEmpty = "Значение не может быть пустым."
	retryDate  = "Неверный формат даты."
	retryLink  = "Некорректная ссылка."
)

var prompts = map[Step]string{
	StepName:        promptName,
	StepDescription: promptDescription,
	StepDate:        promptDate,
	StepLocation:    promptLocation,
	StepLink:        promptLink,
}

// promptFor renders the question for the form's current step; in edit mode the current value is shown first.
func promptFor(f Form) string {
	text := prompts[f.Step]
	if f.Mode != ModeEdit || f.Current == nil {
		return text
	}
	return fmt.Sprintf("Текущее значение: %s\n\n%s", currentValue(*f.Current, f.Step), text)
}

func currentValue(e models.Event, step Step) string {
	switch step {
	case StepName:
		return e.Title
	case StepDescription:
		return e.Description
	case StepDate:
		return models.FormatEventDate(e.OccursAt)
	case StepLocation:
		return e.Location
	case StepLink:
		return e.Link
	}
	return ""
}
