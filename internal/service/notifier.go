package service

import (
	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/goroutine"
	"github.com/vkaravaev/workhub-backend/internal/logger"
)

// Notifier доставляет событие пользователю (WebSocket + запись в БД).
// Реализуется ws-хабом; в тестах подменяется моком.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// notifyAsync отправляет уведомление вне транзакции и только логирует сбои:
// side-канал никогда не откатывает основную операцию.
func notifyAsync(notifier Notifier, userID uuid.UUID, event string, data any) {
	if notifier == nil {
		return
	}
	goroutine.SafeGo(func() {
		if err := notifier.BroadcastToUser(userID, event, data); err != nil {
			if logger.Log != nil {
				logger.Log.WithField("user_id", userID).
					WithField("event", event).
					Warnf("не удалось доставить уведомление: %v", err)
			}
		}
	})
}
