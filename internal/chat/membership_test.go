package chat_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/planupp/planupp/internal/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatRepo is an in-memory ChatRepository. WithTransaction snapshots
// the state and restores it when the callback fails, mimicking a rollback.
type fakeChatRepo struct {
	rooms        map[string]*chat.Chat
	messages     map[string][]chat.Message
	participants map[uint]int
	capacities   map[uint]int

	nextRoomID          int
	failSetParticipants bool
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		rooms:        make(map[string]*chat.Chat),
		messages:     make(map[string][]chat.Message),
		participants: make(map[uint]int),
		capacities:   make(map[uint]int),
	}
}

func copyRoom(room *chat.Chat) *chat.Chat {
	dup := *room
	dup.Members = append([]string(nil), room.Members...)
	return &dup
}

func (f *fakeChatRepo) CreateRoom(room *chat.Chat) error {
	if room.ID == "" {
		f.nextRoomID++
		room.ID = fmt.Sprintf("room-%d", f.nextRoomID)
	}
	if room.EventID != nil {
		for _, existing := range f.rooms {
			if existing.EventID != nil && *existing.EventID == *room.EventID {
				return errors.New("duplicate key value violates unique constraint")
			}
		}
	}
	f.rooms[room.ID] = copyRoom(room)
	return nil
}

func (f *fakeChatRepo) GetRoomByID(id string) (*chat.Chat, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, nil
	}
	return copyRoom(room), nil
}

func (f *fakeChatRepo) GetRoomByIDForUpdate(id string) (*chat.Chat, error) {
	return f.GetRoomByID(id)
}

func (f *fakeChatRepo) GetRoomByEventID(eventID uint) (*chat.Chat, error) {
	for _, room := range f.rooms {
		if room.EventID != nil && *room.EventID == eventID {
			return copyRoom(room), nil
		}
	}
	return nil, nil
}

func (f *fakeChatRepo) GetRoomsForUser(userID string) ([]chat.Chat, error) {
	var rooms []chat.Chat
	for _, room := range f.rooms {
		if room.HasMember(userID) {
			rooms = append(rooms, *copyRoom(room))
		}
	}
	return rooms, nil
}

func (f *fakeChatRepo) SaveRoom(room *chat.Chat) error {
	f.rooms[room.ID] = copyRoom(room)
	return nil
}

func (f *fakeChatRepo) DeleteRoom(id string) error {
	delete(f.rooms, id)
	return nil
}

func (f *fakeChatRepo) TouchLastActive(id string) error {
	if room, ok := f.rooms[id]; ok {
		room.LastActive = time.Now()
	}
	return nil
}

func (f *fakeChatRepo) CreateMessage(msg *chat.Message) error {
	f.messages[msg.ChatID] = append(f.messages[msg.ChatID], *msg)
	return nil
}

func (f *fakeChatRepo) GetMessages(chatID string) ([]chat.Message, error) {
	return f.messages[chatID], nil
}

func (f *fakeChatRepo) DeleteMessages(chatID string) error {
	delete(f.messages, chatID)
	return nil
}

func (f *fakeChatRepo) SetEventParticipants(eventID uint, count int) error {
	if f.failSetParticipants {
		return errors.New("store unavailable")
	}
	f.participants[eventID] = count
	return nil
}

func (f *fakeChatRepo) SetEventCapacity(eventID uint, limit int) error {
	f.capacities[eventID] = limit
	return nil
}

func (f *fakeChatRepo) snapshot() (map[string]*chat.Chat, map[uint]int, map[uint]int) {
	rooms := make(map[string]*chat.Chat, len(f.rooms))
	for id, room := range f.rooms {
		rooms[id] = copyRoom(room)
	}
	participants := make(map[uint]int, len(f.participants))
	for k, v := range f.participants {
		participants[k] = v
	}
	capacities := make(map[uint]int, len(f.capacities))
	for k, v := range f.capacities {
		capacities[k] = v
	}
	return rooms, participants, capacities
}

func (f *fakeChatRepo) WithTransaction(txFunc func(chat.ChatRepository) error) error {
	rooms, participants, capacities := f.snapshot()
	if err := txFunc(f); err != nil {
		f.rooms, f.participants, f.capacities = rooms, participants, capacities
		return err
	}
	return nil
}

// newRoom provisions a room for testing and asserts the initial state.
func newRoom(t *testing.T, m *chat.Membership, eventID uint, limit int, creator string) *chat.Chat {
	t.Helper()
	room, err := m.CreateRoomForEvent(eventID, "Badminton Chat", "", limit, creator)
	require.NoError(t, err)
	require.Equal(t, []string{creator}, []string(room.Members))
	return room
}

func TestCreateRoomForEvent_Idempotent(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)

	first, err := m.CreateRoomForEvent(7, "Badminton Chat", "", 4, "alice")
	require.NoError(t, err)

	second, err := m.CreateRoomForEvent(7, "Badminton Chat", "", 4, "alice")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.rooms, 1)
}

func TestJoinAndSelfExit_MirrorsCounter(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 4, "alice")

	joined, err := m.Join(room.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, []string(joined.Members))
	assert.Equal(t, 2, repo.participants[7])

	left, err := m.SelfExit(room.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, []string(left.Members))
	assert.Equal(t, 1, repo.participants[7])
}

func TestJoin_AlreadyMemberIsSoftNoOp(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 4, "alice")

	_, err := m.Join(room.ID, "bob")
	require.NoError(t, err)

	again, err := m.Join(room.ID, "bob")
	assert.ErrorIs(t, err, chat.ErrAlreadyMember)
	assert.Equal(t, []string{"alice", "bob"}, []string(again.Members))

	// No duplicate membership after any operation.
	stored := repo.rooms[room.ID]
	seen := map[string]bool{}
	for _, id := range stored.Members {
		assert.False(t, seen[id], "duplicate member %s", id)
		seen[id] = true
	}
}

func TestJoin_RoomNotFound(t *testing.T) {
	m := chat.NewMembership(newFakeChatRepo())
	_, err := m.Join("missing", "bob")
	assert.ErrorIs(t, err, chat.ErrRoomNotFound)
}

func TestJoin_RoomFull(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 2, "alice")

	_, err := m.Join(room.ID, "bob")
	require.NoError(t, err)

	_, err = m.Join(room.ID, "carol")
	assert.ErrorIs(t, err, chat.ErrRoomFull)
	assert.Equal(t, 2, repo.participants[7])
}

func TestAdminAdd(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 4, "alice")

	added, err := m.AdminAdd(room.ID, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, []string(added.Members))
	assert.Equal(t, 2, repo.participants[7])

	_, err = m.AdminAdd(room.ID, "bob", "carol")
	assert.ErrorIs(t, err, chat.ErrNotAuthorized)
	assert.Equal(t, []string{"alice", "bob"}, []string(repo.rooms[room.ID].Members))
}

func TestAdminRemove(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 4, "alice")
	_, err := m.Join(room.ID, "bob")
	require.NoError(t, err)

	// A non-admin caller cannot remove anyone; the member list is untouched.
	_, err = m.AdminRemove(room.ID, "bob", "alice")
	assert.ErrorIs(t, err, chat.ErrNotAuthorized)
	assert.Equal(t, []string{"alice", "bob"}, []string(repo.rooms[room.ID].Members))

	// The admin slot is immutable even for the admin themselves.
	_, err = m.AdminRemove(room.ID, "alice", "alice")
	assert.ErrorIs(t, err, chat.ErrCannotRemoveAdmin)
	assert.Equal(t, "alice", repo.rooms[room.ID].AdminID())

	removed, err := m.AdminRemove(room.ID, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, []string(removed.Members))
	assert.Equal(t, 1, repo.participants[7])
}

func TestSelfExit_AdminCannotExit(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 4, "alice")

	_, err := m.SelfExit(room.ID, "alice")
	assert.ErrorIs(t, err, chat.ErrAdminCannotExit)
	assert.Equal(t, "alice", repo.rooms[room.ID].AdminID())
}

func TestSelfExit_NotAMemberIsSoftNoOp(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 4, "alice")

	_, err := m.SelfExit(room.ID, "mallory")
	assert.ErrorIs(t, err, chat.ErrNotAMember)
	assert.Equal(t, []string{"alice"}, []string(repo.rooms[room.ID].Members))
}

func TestCounterMirrorFailureRollsBackMembership(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 4, "alice")

	repo.failSetParticipants = true
	_, err := m.Join(room.ID, "bob")
	require.Error(t, err)

	// The membership change rolled back with the failed counter write.
	assert.Equal(t, []string{"alice"}, []string(repo.rooms[room.ID].Members))
}

func TestAdminSlotImmutableAcrossOperations(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 6, "alice")

	users := []string{"bob", "carol", "dave"}
	for _, u := range users {
		_, err := m.Join(room.ID, u)
		require.NoError(t, err)
		assert.Equal(t, "alice", repo.rooms[room.ID].AdminID())
	}
	for _, u := range users {
		_, err := m.SelfExit(room.ID, u)
		require.NoError(t, err)
		assert.Equal(t, "alice", repo.rooms[room.ID].AdminID())
	}
	assert.Equal(t, 1, repo.participants[7])
}

func TestRename(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 4, "alice")

	renamed, err := m.Rename(room.ID, "alice", "  Sunday Badminton  ")
	require.NoError(t, err)
	assert.Equal(t, "Sunday Badminton", renamed.Name)

	_, err = m.Rename(room.ID, "alice", "   ")
	assert.ErrorIs(t, err, chat.ErrInvalidName)

	_, err = m.Rename(room.ID, "bob", "Hijacked")
	assert.ErrorIs(t, err, chat.ErrNotAuthorized)
}

func TestUpdateSettings(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 10, "alice")
	_, err := m.Join(room.ID, "bob")
	require.NoError(t, err)

	// Shrinking below the current member count is rejected.
	one := 1
	_, err = m.UpdateSettings(room.ID, "alice", chat.SettingsPatch{ChatLimit: &one})
	assert.ErrorIs(t, err, chat.ErrInvalidLimit)

	// A valid limit change mirrors onto the event capacity and rescales
	// the public/friends split to fit.
	six := 6
	updated, err := m.UpdateSettings(room.ID, "alice", chat.SettingsPatch{ChatLimit: &six})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.ChatLimit)
	assert.Equal(t, 6, repo.capacities[7])
	assert.LessOrEqual(t, updated.PublicSlots+updated.FriendSlots, 6)

	_, err = m.UpdateSettings(room.ID, "bob", chat.SettingsPatch{ChatLimit: &six})
	assert.ErrorIs(t, err, chat.ErrNotAuthorized)
}

func TestDeleteRoom(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)
	room := newRoom(t, m, 7, 4, "alice")
	require.NoError(t, repo.CreateMessage(&chat.Message{ChatID: room.ID, SenderID: "alice", Text: "hi"}))

	err := m.DeleteRoom(room.ID, "bob")
	assert.ErrorIs(t, err, chat.ErrNotAuthorized)

	require.NoError(t, m.DeleteRoom(room.ID, "alice"))
	assert.NotContains(t, repo.rooms, room.ID)
	assert.NotContains(t, repo.messages, room.ID)
	assert.Equal(t, 0, repo.participants[7])
}

func TestRemoveFromAllRooms(t *testing.T) {
	repo := newFakeChatRepo()
	m := chat.NewMembership(repo)

	roomA := newRoom(t, m, 1, 4, "alice")
	roomB := newRoom(t, m, 2, 4, "carol")
	newRoom(t, m, 3, 4, "mallory") // mallory administers this one

	_, err := m.Join(roomA.ID, "mallory")
	require.NoError(t, err)
	_, err = m.Join(roomB.ID, "mallory")
	require.NoError(t, err)

	removed, err := m.RemoveFromAllRooms("mallory")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.Equal(t, []string{"alice"}, []string(repo.rooms[roomA.ID].Members))
	assert.Equal(t, []string{"carol"}, []string(repo.rooms[roomB.ID].Members))
	// The room mallory administers is untouched.
	assert.Equal(t, 1, repo.participants[1])
	assert.Equal(t, 1, repo.participants[2])
	assert.Len(t, repo.rooms, 3)
}
