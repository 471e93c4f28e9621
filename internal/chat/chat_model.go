package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	StatusActive = "ACTIVE"
)

// Chat is the companion room of an event. Members is ordered: the element
// at index 0 is the administrator (the event creator) and is never removed
// or reordered by any membership operation; only room deletion clears it.
type Chat struct {
	ID            string         `gorm:"primaryKey" json:"id"` // UUID
	Name          string         `gorm:"not null" json:"name"`
	Image         string         `json:"image"`
	ShareableLink string         `json:"shareable_link"`
	EventID       *uint          `gorm:"uniqueIndex" json:"event_id"` // 1:1 with the event
	Status        string         `gorm:"default:'ACTIVE'" json:"status"`
	LastActive    time.Time      `json:"last_active"`
	Members       pq.StringArray `gorm:"type:text[]" json:"members"`

	// ChatLimit mirrors the event's total_participants; PublicSlots and
	// FriendSlots partition it for the join page.
	ChatLimit   int `json:"chat_limit"`
	PublicSlots int `json:"public_slots"`
	FriendSlots int `json:"friend_slots"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ch *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if ch.ID == "" {
		ch.ID = uuid.New().String()
	}
	return
}

// AdminID returns the room administrator, the first member.
func (ch *Chat) AdminID() string {
	if len(ch.Members) == 0 {
		return ""
	}
	return ch.Members[0]
}

// HasMember reports whether userID appears in the member list.
func (ch *Chat) HasMember(userID string) bool {
	for _, m := range ch.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Message is an immutable chat message; there are no edit or delete
// operations.
type Message struct {
	gorm.Model
	ChatID   string `gorm:"type:uuid;not null;index" json:"chat_id"`
	SenderID string `gorm:"not null;index" json:"sender_id"`
	Text     string `gorm:"not null" json:"text"`
}
