package event

import (
	"time"

	"gorm.io/gorm"
)

// Event statuses. Events go live immediately; "pending" is reserved for
// listings held back for admin review.
const (
	StatusPending  = "pending"
	StatusAdmitted = "admitted"
)

// MinParticipants is the smallest group an event can be created for.
const MinParticipants = 2

// Event represents a scheduled sports meetup. The companion chat room
// owns the member list; PublicParticipants here is a mirror of that
// list's length and TotalParticipants mirrors the room's chat limit.
type Event struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Sport              string         `gorm:"not null;index" json:"sport"`
	Location           string         `gorm:"not null" json:"location"`
	EventDate          string         `gorm:"not null" json:"event_date"`
	StartTime          string         `gorm:"not null" json:"start_time"`
	EndTime            string         `gorm:"not null" json:"end_time"`
	Description        string         `json:"description"`
	Screenshot         string         `json:"screenshot"`
	CreatorID          string         `gorm:"type:uuid;not null;index" json:"creator_id"`
	Status             string         `gorm:"default:'admitted'" json:"status"`
	TotalParticipants  int            `gorm:"not null" json:"total_participants"`
	PublicParticipants int            `gorm:"default:1" json:"public_participants"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsFull reports whether the participant mirror has reached capacity.
func (e *Event) IsFull() bool {
	return e.TotalParticipants > 0 && e.PublicParticipants >= e.TotalParticipants
}
