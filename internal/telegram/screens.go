package telegram

import (
	"sync"

	"github.com/TheReshkin/events-bot/internal/ui"
)

// screen is the last message the bot rendered in a chat.
type screen struct {
	messageID int
	view      ui.View
	prompt    bool
}

type screens struct {
	mu     sync.Mutex
	byChat map[int64]screen
}

func newScreens() *screens {
	return &screens{byChat: make(map[int64]screen)}
}

func (s *screens) get(chatID int64) (screen, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.byChat[chatID]
	return sc, ok
}

func (s *screens) put(chatID int64, sc screen) {
	s.mu.Lock()
	s.byChat[chatID] = sc
	s.mu.Unlock()
}

// viewOf returns the cached view if messageID is the message last rendered in the chat.
func (s *screens) viewOf(chatID int64, messageID int) *ui.View {
	sc, ok := s.get(chatID)
	if !ok || sc.messageID != messageID {
		return nil
	}
	v := sc.view
	return &v
}
