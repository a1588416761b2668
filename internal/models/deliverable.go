package models

import (
	"time"

	"github.com/google/uuid"
)

// Deliverable описывает файл, сданный фрилансером по проекту.
// Версия увеличивается при каждой повторной сдаче; одобрение и отклонение взаимоисключающи.
type Deliverable struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	ProjectID        uuid.UUID  `db:"project_id" json:"project_id"`
	FreelancerID     uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	Title            string     `db:"title" json:"title"`
	FilePath         string     `db:"file_path" json:"file_path"`
	FileName         string     `db:"file_name" json:"file_name"`
	FileSize         int64      `db:"file_size" json:"file_size"`
	MimeType         string     `db:"mime_type" json:"mime_type"`
	Version          int        `db:"version" json:"version"`
	ApprovedByClient bool       `db:"approved_by_client" json:"approved_by_client"`
	Rejected         bool       `db:"rejected" json:"rejected"`
	RejectionReason  *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ApprovedAt       *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
