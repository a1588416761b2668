package ws

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHub_BroadcastToUser_Buffered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(ctx)

	err := hub.BroadcastToUser(uuid.New(), "notification.test", map[string]string{"k": "v"})
	assert.NoError(t, err)
}

func TestHub_BroadcastToUser_AfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(ctx)
	cancel()

	// Цикл хаба больше не читает из канала; даже при переполненном буфере
	// отправка обязана вернуть ошибку, а не повиснуть.
	done := make(chan error, 1)
	go func() {
		var last error
		for i := 0; i < 64; i++ {
			last = hub.BroadcastToUser(uuid.New(), "notification.test", i)
		}
		done <- last
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "хаб остановлен")
	case <-time.After(2 * time.Second):
		t.Fatal("отправка после остановки хаба заблокировалась")
	}
}
