package services

import (
	"context"
	"errors"

	"github.com/TheReshkin/events-bot/internal/metrics"
	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/TheReshkin/events-bot/internal/storage"
	"go.uber.org/zap"
)

type EventService struct {
	store  storage.Storage
	logger *zap.Logger
}

func NewEventService(store storage.Storage, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		store:  store,
		logger: logger.With(zap.String("component", "event_service")),
	}
}

// Create validates and persists a fully collected event, returning its id.
func (s *EventService) Create(ctx context.Context, event models.Event) (int64, error) {
	if err := event.Validate(); err != nil {
		s.logger.Warn("Отказ в создании неполного события",
			zap.Int64("owner_id", event.OwnerID),
			zap.Error(err))
		return 0, err
	}
	id, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		s.storeFailure("create_event", err, zap.Int64("owner_id", event.OwnerID))
		return 0, err
	}
	s.logger.Info("Событие создано",
		zap.Int64("event_id", id),
		zap.Int64("owner_id", event.OwnerID),
		zap.String("title", event.Title),
		zap.String("occurs_at", models.FormatStorageDate(event.OccursAt)))
	return id, nil
}

func (s *EventService) Get(ctx context.Context, eventID int64) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			s.logger.Debug("Событие не найдено", zap.Int64("event_id", eventID))
			return nil, err
		}
		s.storeFailure("get_event", err, zap.Int64("event_id", eventID))
		return nil, err
	}
	return event, nil
}

// GetOwned returns the event only when ownerID owns it; foreign events are reported as not found.
func (s *EventService) GetOwned(ctx context.Context, eventID, ownerID int64) (*models.Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != ownerID {
		s.logger.Warn("Событие принадлежит другому пользователю",
			zap.Int64("event_id", eventID),
			zap.Int64("user_id", ownerID))
		return nil, models.ErrEventNotFound
	}
	return event, nil
}

func (s *EventService) Update(ctx context.Context, event models.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	err := s.store.UpdateEvent(ctx, event)
	switch {
	case errors.Is(err, models.ErrEventNotFound):
		s.logger.Warn("Обновление отсутствующего или чужого события",
			zap.Int64("event_id", event.EventID),
			zap.Int64("owner_id", event.OwnerID))
		return err
	case err != nil:
		s.storeFailure("update_event", err, zap.Int64("event_id", event.EventID))
		return err
	}
	s.logger.Info("Событие обновлено",
		zap.Int64("event_id", event.EventID),
		zap.Int64("owner_id", event.OwnerID))
	return nil
}

// Delete removes an owned event and all of its participations.
func (s *EventService) Delete(ctx context.Context, eventID, ownerID int64) error {
	err := s.store.DeleteEvent(ctx, eventID, ownerID)
	switch {
	case errors.Is(err, models.ErrEventNotFound):
		s.logger.Warn("Удаление отсутствующего или чужого события",
			zap.Int64("event_id", eventID),
			zap.Int64("owner_id", ownerID))
		return err
	case err != nil:
		s.storeFailure("delete_event", err, zap.Int64("event_id", eventID))
		return err
	}
	s.logger.Info("Событие удалено",
		zap.Int64("event_id", eventID),
		zap.Int64("owner_id", ownerID))
	return nil
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		s.storeFailure("list_events", err)
	}
	return events, err
}

func (s *EventService) ListByOwner(ctx context.Context, ownerID int64) ([]models.Event, error) {
	events, err := s.store.ListEventsByOwner(ctx, ownerID)
	if err != nil {
		s.storeFailure("list_events_by_owner", err, zap.Int64("owner_id", ownerID))
	}
	return events, err
}

// Subscribe records the participation; a repeated subscription yields models.ErrAlreadySubscribed.
func (s *EventService) Subscribe(ctx context.Context, eventID, userID int64) error {
	err := s.store.AddParticipant(ctx, eventID, userID)
	switch {
	case errors.Is(err, models.ErrAlreadySubscribed), errors.Is(err, models.ErrEventNotFound):
		s.logger.Debug("Запись отклонена",
			zap.Int64("event_id", eventID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return err
	case err != nil:
		s.storeFailure("add_participant", err, zap.Int64("event_id", eventID), zap.Int64("user_id", userID))
		return err
	}
	s.logger.Info("Пользователь записан на событие",
		zap.Int64("event_id", eventID),
		zap.Int64("user_id", userID))
	return nil
}

func (s *EventService) Unsubscribe(ctx context.Context, eventID, userID int64) error {
	if err := s.store.RemoveParticipant(ctx, eventID, userID); err != nil {
		s.storeFailure("remove_participant", err, zap.Int64("event_id", eventID), zap.Int64("user_id", userID))
		return err
	}
	s.logger.Info("Пользователь отписан от события",
		zap.Int64("event_id", eventID),
		zap.Int64("user_id", userID))
	return nil
}

func (s *EventService) IsSubscribed(ctx context.Context, eventID, userID int64) (bool, error) {
	ok, err := s.store.IsParticipant(ctx, eventID, userID)
	if err != nil {
		s.storeFailure("is_participant", err, zap.Int64("event_id", eventID), zap.Int64("user_id", userID))
	}
	return ok, err
}

func (s *EventService) CountParticipants(ctx context.Context, eventID int64) (int, error) {
	n, err := s.store.CountParticipants(ctx, eventID)
	if err != nil {
		s.storeFailure("count_participants", err, zap.Int64("event_id", eventID))
	}
	return n, err
}

func (s *EventService) storeFailure(op string, err error, fields ...zap.Field) {
	metrics.StoreErrorCounter.WithLabelValues(op).Inc()
	s.logger.Error("Ошибка операции хранилища", append(fields, zap.String("operation", op), zap.Error(err))...)
}
