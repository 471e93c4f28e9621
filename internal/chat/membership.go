package chat

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Membership errors. ErrAlreadyMember is a soft failure: the operation is
// a no-op and the current room state accompanies it.
var (
	ErrRoomNotFound      = errors.New("chat room not found")
	ErrRoomExists        = errors.New("chat room already exists for this event")
	ErrAlreadyMember     = errors.New("user is already a member of this chat room")
	ErrNotAMember        = errors.New("user is not a member of this chat room")
	ErrNotAuthorized     = errors.New("only the chat admin can perform this operation")
	ErrCannotRemoveAdmin = errors.New("cannot remove the chat admin")
	ErrAdminCannotExit   = errors.New("chat admin cannot exit; delete the chat room instead")
	ErrRoomFull          = errors.New("chat room is full")
	ErrInvalidName       = errors.New("chat room name cannot be empty")
	ErrInvalidLimit      = errors.New("chat limit must allow the current members")
)

// Membership owns every mutation of a room's member list. Two invariants
// hold after each operation: members[0] is the admin and never changes,
// and the linked event's public_participants equals len(members). Each
// mutation locks the room row and mirrors the counter in the same
// transaction.
type Membership struct {
	repo ChatRepository
}

// NewMembership creates the membership service.
func NewMembership(repo ChatRepository) *Membership {
	return &Membership{repo: repo}
}

// CreateRoomForEvent provisions the companion room for an event, with the
// creator as sole initial member and admin. Calling it twice for the same
// event returns the existing room, so duplicate submits are harmless.
func (m *Membership) CreateRoomForEvent(eventID uint, name, image string, limit int, creatorID string) (*Chat, error) {
	existing, err := m.repo.GetRoomByEventID(eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	publicSlots, friendSlots := splitSlots(limit)
	room := &Chat{
		Name:        name,
		Image:       image,
		EventID:     &eventID,
		Status:      StatusActive,
		LastActive:  time.Now(),
		Members:     []string{creatorID},
		ChatLimit:   limit,
		PublicSlots: publicSlots,
		FriendSlots: friendSlots,
	}
	room.ShareableLink = fmt.Sprintf("/chats/join/%d", time.Now().UnixMilli())

	if err := m.repo.CreateRoom(room); err != nil {
		// A concurrent create may have won the unique event_id index.
		if existing, lookupErr := m.repo.GetRoomByEventID(eventID); lookupErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return room, nil
}

// Join appends userID to the member list and mirrors the counter. Joining
// a room you are already in returns the room with ErrAlreadyMember.
func (m *Membership) Join(roomID, userID string) (*Chat, error) {
	return m.addMember(roomID, userID)
}

// AdminAdd lets the room admin add another user. Same membership and
// counter semantics as Join.
func (m *Membership) AdminAdd(roomID, adminID, userID string) (*Chat, error) {
	var result *Chat
	err := m.repo.WithTransaction(func(tx ChatRepository) error {
		room, err := tx.GetRoomByIDForUpdate(roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		if room.AdminID() != adminID {
			return ErrNotAuthorized
		}
		result = room
		return m.appendAndMirror(tx, room, userID)
	})
	return result, err
}

func (m *Membership) addMember(roomID, userID string) (*Chat, error) {
	var result *Chat
	err := m.repo.WithTransaction(func(tx ChatRepository) error {
		room, err := tx.GetRoomByIDForUpdate(roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		result = room
		return m.appendAndMirror(tx, room, userID)
	})
	return result, err
}

// appendAndMirror runs inside the caller's transaction with the room row
// locked.
func (m *Membership) appendAndMirror(tx ChatRepository, room *Chat, userID string) error {
	if room.HasMember(userID) {
		return ErrAlreadyMember
	}
	if room.ChatLimit > 0 && len(room.Members) >= room.ChatLimit {
		return ErrRoomFull
	}

	room.Members = append(room.Members, userID)
	if err := tx.SaveRoom(room); err != nil {
		return err
	}
	return m.mirrorCounter(tx, room)
}

// AdminRemove removes userID from the room on behalf of the admin. The
// admin slot itself (members[0]) is untouchable.
func (m *Membership) AdminRemove(roomID, adminID, userID string) (*Chat, error) {
	var result *Chat
	err := m.repo.WithTransaction(func(tx ChatRepository) error {
		room, err := tx.GetRoomByIDForUpdate(roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		if room.AdminID() != adminID {
			return ErrNotAuthorized
		}
		result = room
		return m.removeAndMirror(tx, room, userID)
	})
	return result, err
}

// RemoveMember removes userID without an admin-authorization check. It is
// for server-triggered cleanup (moderation after a permanent ban), never
// wired to a user-facing route; callers are expected to log the removal.
func (m *Membership) RemoveMember(roomID, userID string) (*Chat, error) {
	var result *Chat
	err := m.repo.WithTransaction(func(tx ChatRepository) error {
		room, err := tx.GetRoomByIDForUpdate(roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		result = room
		return m.removeAndMirror(tx, room, userID)
	})
	return result, err
}

// SelfExit removes the caller from the room. The admin cannot exit their
// own room; they must delete it.
func (m *Membership) SelfExit(roomID, userID string) (*Chat, error) {
	var result *Chat
	err := m.repo.WithTransaction(func(tx ChatRepository) error {
		room, err := tx.GetRoomByIDForUpdate(roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		if room.AdminID() == userID {
			return ErrAdminCannotExit
		}
		result = room
		return m.removeAndMirror(tx, room, userID)
	})
	return result, err
}

func (m *Membership) removeAndMirror(tx ChatRepository, room *Chat, userID string) error {
	if userID == room.AdminID() {
		return ErrCannotRemoveAdmin
	}
	if !room.HasMember(userID) {
		return ErrNotAMember
	}

	members := make([]string, 0, len(room.Members)-1)
	for _, id := range room.Members {
		if id != userID {
			members = append(members, id)
		}
	}
	room.Members = members

	if err := tx.SaveRoom(room); err != nil {
		return err
	}
	return m.mirrorCounter(tx, room)
}

// mirrorCounter writes len(members) to the event's public_participants.
// It runs inside the membership transaction, so a failed mirror rolls the
// membership change back rather than leaving the counter stale.
func (m *Membership) mirrorCounter(tx ChatRepository, room *Chat) error {
	if room.EventID == nil {
		return nil
	}
	return tx.SetEventParticipants(*room.EventID, len(room.Members))
}

// SettingsPatch carries the admin-editable room settings. Nil fields are
// left unchanged.
type SettingsPatch struct {
	ChatLimit   *int
	PublicSlots *int
	FriendSlots *int
	Image       *string
}

// UpdateSettings applies an admin's settings patch. A shrunk chat limit
// rescales the public/friends split so the two never exceed it, and the
// new limit is mirrored onto the event's total_participants.
func (m *Membership) UpdateSettings(roomID, adminID string, patch SettingsPatch) (*Chat, error) {
	var result *Chat
	err := m.repo.WithTransaction(func(tx ChatRepository) error {
		room, err := tx.GetRoomByIDForUpdate(roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		if room.AdminID() != adminID {
			return ErrNotAuthorized
		}

		limitChanged := false
		if patch.ChatLimit != nil {
			if *patch.ChatLimit < len(room.Members) {
				return ErrInvalidLimit
			}
			room.ChatLimit = *patch.ChatLimit
			limitChanged = true
		}
		if patch.PublicSlots != nil {
			room.PublicSlots = *patch.PublicSlots
		}
		if patch.FriendSlots != nil {
			room.FriendSlots = *patch.FriendSlots
		}
		if patch.Image != nil {
			room.Image = *patch.Image
		}

		room.PublicSlots, room.FriendSlots = clampSlots(room.ChatLimit, room.PublicSlots, room.FriendSlots)

		if err := tx.SaveRoom(room); err != nil {
			return err
		}
		if limitChanged && room.EventID != nil {
			if err := tx.SetEventCapacity(*room.EventID, room.ChatLimit); err != nil {
				return err
			}
		}
		result = room
		return nil
	})
	return result, err
}

// splitSlots produces the default public/friends partition for a fresh
// room: 70% of the limit is public, the remainder is for friends.
func splitSlots(limit int) (int, int) {
	if limit <= 0 {
		return 0, 0
	}
	public := limit * 7 / 10
	return public, limit - public
}

// clampSlots keeps an edited public/friends partition inside the limit.
// A public share that no longer fits falls back to the 70% default;
// friends are squeezed to whatever room is left.
func clampSlots(limit, public, friends int) (int, int) {
	if limit <= 0 {
		return 0, 0
	}
	if public > limit || public < 0 {
		public = limit * 7 / 10
	}
	if public+friends > limit || friends < 0 {
		friends = limit - public
	}
	return public, friends
}

// Rename changes the room's display name. Admin-only; whitespace-only
// names are rejected.
func (m *Membership) Rename(roomID, adminID, newName string) (*Chat, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, ErrInvalidName
	}

	var result *Chat
	err := m.repo.WithTransaction(func(tx ChatRepository) error {
		room, err := tx.GetRoomByIDForUpdate(roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		if room.AdminID() != adminID {
			return ErrNotAuthorized
		}
		room.Name = newName
		if err := tx.SaveRoom(room); err != nil {
			return err
		}
		result = room
		return nil
	})
	return result, err
}

// DeleteRoom removes the room, its messages, and detaches the event
// counter. This is the only operation allowed to drop members[0].
func (m *Membership) DeleteRoom(roomID, adminID string) error {
	return m.repo.WithTransaction(func(tx ChatRepository) error {
		room, err := tx.GetRoomByIDForUpdate(roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		if room.AdminID() != adminID {
			return ErrNotAuthorized
		}

		if err := tx.DeleteMessages(roomID); err != nil {
			return err
		}
		if err := tx.DeleteRoom(roomID); err != nil {
			return err
		}
		if room.EventID != nil {
			if err := tx.SetEventParticipants(*room.EventID, 0); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveFromAllRooms strips userID out of every room where they are a
// non-admin member. Rooms they administer are skipped: the admin slot is
// immutable. Failures on individual rooms are logged and do not stop the
// sweep; the number of rooms actually left is returned.
func (m *Membership) RemoveFromAllRooms(userID string) (int, error) {
	rooms, err := m.repo.GetRoomsForUser(userID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, room := range rooms {
		if room.AdminID() == userID {
			continue
		}
		if _, err := m.RemoveMember(room.ID, userID); err != nil {
			log.Printf("failed to remove user %s from room %s: %v", userID, room.ID, err)
			continue
		}
		removed++
	}
	return removed, nil
}
