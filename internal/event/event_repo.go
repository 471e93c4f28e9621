package event

import (
	"errors"

	"gorm.io/gorm"
)

// EventRepository defines data access for events
type EventRepository interface {
	CreateEvent(event *Event) error
	GetEventByID(id uint) (*Event, error)
	ListEvents(filter EventFilter, page, limit int) ([]Event, int64, error)
	GetEventsByCreator(creatorID string) ([]Event, error)
	CountEventsByCreator(creatorID string) (int64, error)
	SearchEvents(query string, page, limit int) ([]Event, int64, error)
	UpdateEvent(event *Event) error
	UpdateStatus(id uint, status string) error
	DeleteEvent(id uint) error
}

// EventFilter narrows event listings. Zero values are ignored.
type EventFilter struct {
	Sport     string
	Location  string
	EventDate string
	Status    string
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(event *Event) error {
	return r.db.Create(event).Error
}

func (r *eventRepository) GetEventByID(id uint) (*Event, error) {
	var event Event
	if err := r.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) ListEvents(filter EventFilter, page, limit int) ([]Event, int64, error) {
	var events []Event
	var total int64

	query := r.db.Model(&Event{})
	if filter.Sport != "" {
		query = query.Where("sport = ?", filter.Sport)
	}
	if filter.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.EventDate != "" {
		query = query.Where("event_date = ?", filter.EventDate)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&events).Error
	return events, total, err
}

func (r *eventRepository) GetEventsByCreator(creatorID string) ([]Event, error) {
	var events []Event
	err := r.db.Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&events).Error
	return events, err
}

func (r *eventRepository) CountEventsByCreator(creatorID string) (int64, error) {
	var count int64
	err := r.db.Model(&Event{}).Where("creator_id = ?", creatorID).Count(&count).Error
	return count, err
}

func (r *eventRepository) SearchEvents(query string, page, limit int) ([]Event, int64, error) {
	var events []Event
	var total int64

	pattern := "%" + query + "%"
	q := r.db.Model(&Event{}).
		Where("sport ILIKE ? OR location ILIKE ? OR description ILIKE ?", pattern, pattern, pattern)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&events).Error
	return events, total, err
}

func (r *eventRepository) UpdateEvent(event *Event) error {
	return r.db.Save(event).Error
}

func (r *eventRepository) UpdateStatus(id uint, status string) error {
	result := r.db.Model(&Event{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepository) DeleteEvent(id uint) error {
	return r.db.Delete(&Event{}, id).Error
}
