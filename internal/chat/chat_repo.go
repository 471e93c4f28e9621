package chat

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for chat room and message data
// operations. It also carries the event-counter writes so a membership
// mutation and its counter mirror can share one transaction.
type ChatRepository interface {
	CreateRoom(room *Chat) error
	GetRoomByID(id string) (*Chat, error)
	// GetRoomByIDForUpdate locks the room row for the duration of the
	// surrounding transaction. Membership mutations go through this so
	// two concurrent joins cannot both read the same member list.
	GetRoomByIDForUpdate(id string) (*Chat, error)
	GetRoomByEventID(eventID uint) (*Chat, error)
	GetRoomsForUser(userID string) ([]Chat, error)
	SaveRoom(room *Chat) error
	DeleteRoom(id string) error
	TouchLastActive(id string) error

	CreateMessage(msg *Message) error
	GetMessages(chatID string) ([]Message, error)
	DeleteMessages(chatID string) error

	SetEventParticipants(eventID uint, count int) error
	SetEventCapacity(eventID uint, limit int) error

	WithTransaction(txFunc func(ChatRepository) error) error
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new instance of ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateRoom(room *Chat) error {
	return r.db.Create(room).Error
}

func (r *chatRepository) GetRoomByID(id string) (*Chat, error) {
	var room Chat
	if err := r.db.Where("id = ?", id).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) GetRoomByIDForUpdate(id string) (*Chat, error) {
	var room Chat
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) GetRoomByEventID(eventID uint) (*Chat, error) {
	var room Chat
	if err := r.db.Where("event_id = ?", eventID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) GetRoomsForUser(userID string) ([]Chat, error) {
	var rooms []Chat
	err := r.db.Where("? = ANY(members)", userID).
		Order("last_active DESC").Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *chatRepository) SaveRoom(room *Chat) error {
	return r.db.Save(room).Error
}

func (r *chatRepository) DeleteRoom(id string) error {
	return r.db.Where("id = ?", id).Delete(&Chat{}).Error
}

func (r *chatRepository) TouchLastActive(id string) error {
	return r.db.Model(&Chat{}).Where("id = ?", id).
		Update("last_active", time.Now()).Error
}

func (r *chatRepository) CreateMessage(msg *Message) error {
	return r.db.Create(msg).Error
}

func (r *chatRepository) GetMessages(chatID string) ([]Message, error) {
	var messages []Message
	err := r.db.Where("chat_id = ?", chatID).
		Order("created_at asc").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) DeleteMessages(chatID string) error {
	return r.db.Where("chat_id = ?", chatID).Delete(&Message{}).Error
}

// The events table is written by name here; the chat package stays free
// of an import on internal/event so the dependency runs one way.

func (r *chatRepository) SetEventParticipants(eventID uint, count int) error {
	return r.db.Table("events").Where("id = ?", eventID).
		Update("public_participants", count).Error
}

func (r *chatRepository) SetEventCapacity(eventID uint, limit int) error {
	return r.db.Table("events").Where("id = ?", eventID).
		Update("total_participants", limit).Error
}

func (r *chatRepository) WithTransaction(txFunc func(ChatRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &chatRepository{db: tx}
		return txFunc(txRepo)
	})
}
