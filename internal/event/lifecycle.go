package event

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/planupp/planupp/internal/user"
	"gorm.io/gorm"
)

// Validation and lookup errors surfaced by the lifecycle service.
var (
	ErrMissingFields      = errors.New("sport, location, date and times are required")
	ErrTooFewParticipants = errors.New("an event needs at least 2 participants")
	ErrBadTimeRange       = errors.New("end time must be after start time")
	ErrBadDate            = errors.New("event date must be YYYY-MM-DD")
	ErrEventNotFound      = errors.New("event not found")
)

// RoomProvisioner creates the companion chat room for a new event and
// returns its ID. Satisfied by the chat package's membership service.
type RoomProvisioner interface {
	ProvisionRoom(eventID uint, name, image string, limit int, creatorID string) (string, error)
}

// Lifecycle drives event creation: validate, persist, mark the creator's
// record, recompute their tier, and provision the companion chat room.
type Lifecycle struct {
	repo  EventRepository
	users user.UserRepository
	rooms RoomProvisioner
}

// NewLifecycle creates a new event lifecycle service
func NewLifecycle(repo EventRepository, users user.UserRepository, rooms RoomProvisioner) *Lifecycle {
	return &Lifecycle{repo: repo, users: users, rooms: rooms}
}

// CreateEventInput carries the fields for a new event.
type CreateEventInput struct {
	Sport             string
	Location          string
	EventDate         string
	StartTime         string
	EndTime           string
	Description       string
	Screenshot        string
	TotalParticipants int
}

func (in *CreateEventInput) validate() error {
	if strings.TrimSpace(in.Sport) == "" ||
		strings.TrimSpace(in.Location) == "" ||
		strings.TrimSpace(in.EventDate) == "" ||
		strings.TrimSpace(in.StartTime) == "" ||
		strings.TrimSpace(in.EndTime) == "" {
		return ErrMissingFields
	}
	if in.TotalParticipants < MinParticipants {
		return ErrTooFewParticipants
	}
	if _, err := time.Parse("2006-01-02", in.EventDate); err != nil {
		return ErrBadDate
	}
	start, err := time.Parse("15:04", in.StartTime)
	if err != nil {
		return ErrBadTimeRange
	}
	end, err := time.Parse("15:04", in.EndTime)
	if err != nil {
		return ErrBadTimeRange
	}
	if !end.After(start) {
		return ErrBadTimeRange
	}
	return nil
}

// CreateEvent validates and persists a new event, then provisions its
// chat room. The returned room ID is empty when provisioning failed;
// the event itself survives, so the creator can retry the room later.
func (l *Lifecycle) CreateEvent(input CreateEventInput, creatorID string) (*Event, string, error) {
	if err := input.validate(); err != nil {
		return nil, "", err
	}

	event := &Event{
		Sport:              strings.TrimSpace(input.Sport),
		Location:           strings.TrimSpace(input.Location),
		EventDate:          input.EventDate,
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		Description:        input.Description,
		Screenshot:         input.Screenshot,
		CreatorID:          creatorID,
		Status:             StatusAdmitted,
		TotalParticipants:  input.TotalParticipants,
		PublicParticipants: 1,
	}
	if err := l.repo.CreateEvent(event); err != nil {
		return nil, "", err
	}

	if err := l.users.AppendCreatedEvent(creatorID, event.ID); err != nil {
		log.Printf("event %d: failed to record on creator %s: %v", event.ID, creatorID, err)
	}
	if err := l.RecomputeTier(creatorID); err != nil {
		log.Printf("event %d: tier recompute for %s failed: %v", event.ID, creatorID, err)
	}

	roomID := l.provisionRoom(event, creatorID)
	return event, roomID, nil
}

// provisionRoom creates the companion chat room, retrying once on
// failure. A room that still cannot be created is logged and skipped.
func (l *Lifecycle) provisionRoom(event *Event, creatorID string) string {
	name := event.Sport + " Chat"
	for attempt := 1; attempt <= 2; attempt++ {
		roomID, err := l.rooms.ProvisionRoom(event.ID, name, event.Screenshot, event.TotalParticipants, creatorID)
		if err == nil {
			return roomID
		}
		log.Printf("event %d: chat room provisioning attempt %d failed: %v", event.ID, attempt, err)
	}
	return ""
}

// RecomputeTier derives the creator's tier from their lifetime event
// count and persists it when it changed.
func (l *Lifecycle) RecomputeTier(creatorID string) error {
	count, err := l.repo.CountEventsByCreator(creatorID)
	if err != nil {
		return err
	}
	u, err := l.users.GetUserByID(creatorID)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	tier := user.TierForEventCount(int(count))
	if tier == u.Tier {
		return nil
	}
	return l.users.UpdateTier(creatorID, tier)
}

// AdmitEvent moves a held-back event into the public listing.
func (l *Lifecycle) AdmitEvent(id uint) error {
	if err := l.repo.UpdateStatus(id, StatusAdmitted); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}
