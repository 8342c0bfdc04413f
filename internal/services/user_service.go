package services

import (
	"context"
	"sync"

	"github.com/TheReshkin/events-bot/internal/metrics"
	"github.com/TheReshkin/events-bot/internal/storage"
	"go.uber.org/zap"
)

type UserService struct {
	store  storage.Storage
	logger *zap.Logger

	mu   sync.Mutex
	seen map[int64]struct{}
}

func NewUserService(store storage.Storage, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		store:  store,
		logger: logger.With(zap.String("component", "user_service")),
		seen:   make(map[int64]struct{}),
	}
}

// Ensure registers the user on first contact. Repeated calls are no-ops; users already
// registered by this process skip the store entirely.
func (s *UserService) Ensure(ctx context.Context, userID int64) error {
	s.mu.Lock()
	_, ok := s.seen[userID]
	s.mu.Unlock()
	if ok {
		return nil
	}

	if err := s.store.CreateUser(ctx, userID); err != nil {
		metrics.StoreErrorCounter.WithLabelValues("create_user").Inc()
		s.logger.Error("Ошибка регистрации пользователя",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.seen[userID] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("Пользователь зарегистрирован", zap.Int64("user_id", userID))
	return nil
}
