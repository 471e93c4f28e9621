package report

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report statuses. A report is PENDING until an admin resolves it, and
// a resolved report never changes again.
const (
	StatusPending = "PENDING"
	StatusBanned  = "BANNED"
	StatusIgnored = "IGNORED"
)

// Report is a user's complaint about another user. Resolving it with a
// ban bumps the reported user's ban count.
type Report struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID string    `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ReportedID string    `gorm:"type:uuid;not null;index" json:"reported_id"`
	Text       string    `gorm:"not null" json:"text"`
	Image      string    `json:"image"`
	Status     string    `gorm:"default:'PENDING';index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsResolved reports whether an admin has already acted on the report.
func (r *Report) IsResolved() bool {
	return r.Status != StatusPending
}
