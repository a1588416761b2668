package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute описывает спор, открытый клиентом после завершения проекта.
// На проект допускается не более одного незавершённого спора и не более
// DisputeMaxPerProject споров за всё время.
type Dispute struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ProjectID      uuid.UUID  `db:"project_id" json:"project_id"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	Reason         string     `db:"reason" json:"reason"`
	PolicyAccepted bool       `db:"policy_accepted" json:"policy_accepted"`
	Status         string     `db:"status" json:"status"`
	ResolvedBy     *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// DisputeLog — запись журнала спора, только добавление.
// Журнал служит аудитом решений администратора и виден обеим сторонам.
type DisputeLog struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DisputeID uuid.UUID  `db:"dispute_id" json:"dispute_id"`
	AuthorID  *uuid.UUID `db:"author_id" json:"author_id,omitempty"`
	Action    string     `db:"action" json:"action"`
	Note      string     `db:"note" json:"note"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
