package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conversation описывает чат между клиентом и фрилансером по проекту.
type Conversation struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ProjectID    *uuid.UUID `db:"project_id" json:"project_id,omitempty"`
	RequestID    *uuid.UUID `db:"request_id" json:"request_id,omitempty"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	FreelancerID uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Message описывает сообщение в чате. Системные сообщения (author_type=system)
// фиксируют изменения условий и статусов и служат аудитом для обеих сторон.
type Message struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ConversationID uuid.UUID  `db:"conversation_id" json:"conversation_id"`
	AuthorType     string     `db:"author_type" json:"author_type"`
	AuthorID       *uuid.UUID `db:"author_id" json:"author_id,omitempty"`
	Content        string     `db:"content" json:"content"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Notification описывает событие, отправленное пользователю.
// Чисто информационная запись, не участвует в инвариантах ядра.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
