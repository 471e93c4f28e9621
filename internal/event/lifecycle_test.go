package event_test

import (
	"errors"
	"testing"

	"github.com/planupp/planupp/internal/event"
	"github.com/planupp/planupp/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventRepo struct {
	events map[uint]*event.Event
	nextID uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uint]*event.Event)}
}

func (f *fakeEventRepo) CreateEvent(e *event.Event) error {
	f.nextID++
	e.ID = f.nextID
	dup := *e
	f.events[e.ID] = &dup
	return nil
}

func (f *fakeEventRepo) GetEventByID(id uint) (*event.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	dup := *e
	return &dup, nil
}

func (f *fakeEventRepo) ListEvents(filter event.EventFilter, page, limit int) ([]event.Event, int64, error) {
	var out []event.Event
	for _, e := range f.events {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeEventRepo) GetEventsByCreator(creatorID string) ([]event.Event, error) {
	var out []event.Event
	for _, e := range f.events {
		if e.CreatorID == creatorID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) CountEventsByCreator(creatorID string) (int64, error) {
	var count int64
	for _, e := range f.events {
		if e.CreatorID == creatorID {
			count++
		}
	}
	return count, nil
}

func (f *fakeEventRepo) SearchEvents(query string, page, limit int) ([]event.Event, int64, error) {
	return nil, 0, nil
}

func (f *fakeEventRepo) UpdateEvent(e *event.Event) error {
	dup := *e
	f.events[e.ID] = &dup
	return nil
}

func (f *fakeEventRepo) UpdateStatus(id uint, status string) error {
	e, ok := f.events[id]
	if !ok {
		return errors.New("record not found")
	}
	e.Status = status
	return nil
}

func (f *fakeEventRepo) DeleteEvent(id uint) error {
	delete(f.events, id)
	return nil
}

type fakeUserStore struct {
	users map[string]*user.User
}

func newFakeUserStore(ids ...string) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*user.User)}
	for _, id := range ids {
		s.users[id] = &user.User{ID: id, Tier: user.TierNewUser}
	}
	return s
}

func (s *fakeUserStore) CreateUser(u *user.User) error { s.users[u.ID] = u; return nil }

func (s *fakeUserStore) GetUserByID(id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	dup := *u
	return &dup, nil
}

func (s *fakeUserStore) GetUserByEmail(email string) (*user.User, error) { return nil, nil }

func (s *fakeUserStore) GetUsersByIDs(ids []string) ([]user.User, error) { return nil, nil }

func (s *fakeUserStore) UpdateUser(u *user.User) error { s.users[u.ID] = u; return nil }

func (s *fakeUserStore) UpdateProfile(id string, patch map[string]interface{}) (*user.User, error) {
	return s.users[id], nil
}

func (s *fakeUserStore) UpdateTier(id string, tier string) error {
	u, ok := s.users[id]
	if !ok {
		return errors.New("record not found")
	}
	u.Tier = tier
	return nil
}

func (s *fakeUserStore) AppendCreatedEvent(id string, eventID uint) error {
	u, ok := s.users[id]
	if !ok {
		return errors.New("record not found")
	}
	u.CreatedEvents = append(u.CreatedEvents, int64(eventID))
	return nil
}

func (s *fakeUserStore) IncrementBans(id string) (int, error) {
	u, ok := s.users[id]
	if !ok {
		return 0, errors.New("record not found")
	}
	u.Bans++
	return u.Bans, nil
}

// fakeProvisioner counts calls and fails the first failUntil attempts.
type fakeProvisioner struct {
	calls     int
	failUntil int
	roomID    string
}

func (p *fakeProvisioner) ProvisionRoom(eventID uint, name, image string, limit int, creatorID string) (string, error) {
	p.calls++
	if p.calls <= p.failUntil {
		return "", errors.New("room store unavailable")
	}
	return p.roomID, nil
}

func validInput() event.CreateEventInput {
	return event.CreateEventInput{
		Sport:             "Badminton",
		Location:          "Riverside Hall",
		EventDate:         "2026-09-15",
		StartTime:         "18:00",
		EndTime:           "20:00",
		TotalParticipants: 4,
	}
}

func newLifecycle(repo *fakeEventRepo, users *fakeUserStore, rooms *fakeProvisioner) *event.Lifecycle {
	return event.NewLifecycle(repo, users, rooms)
}

func TestCreateEvent_ProvisionsRoom(t *testing.T) {
	repo := newFakeEventRepo()
	users := newFakeUserStore("alice")
	rooms := &fakeProvisioner{roomID: "room-1"}
	l := newLifecycle(repo, users, rooms)

	created, roomID, err := l.CreateEvent(validInput(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "room-1", roomID)
	assert.Equal(t, 1, rooms.calls)
	assert.Equal(t, event.StatusAdmitted, created.Status)
	assert.Equal(t, 1, created.PublicParticipants)
	assert.Equal(t, []int64{int64(created.ID)}, []int64(users.users["alice"].CreatedEvents))
}

func TestCreateEvent_RetriesRoomOnce(t *testing.T) {
	repo := newFakeEventRepo()
	users := newFakeUserStore("alice")
	rooms := &fakeProvisioner{roomID: "room-1", failUntil: 1}
	l := newLifecycle(repo, users, rooms)

	_, roomID, err := l.CreateEvent(validInput(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "room-1", roomID)
	assert.Equal(t, 2, rooms.calls)
}

func TestCreateEvent_SurvivesRoomFailure(t *testing.T) {
	repo := newFakeEventRepo()
	users := newFakeUserStore("alice")
	rooms := &fakeProvisioner{failUntil: 2}
	l := newLifecycle(repo, users, rooms)

	created, roomID, err := l.CreateEvent(validInput(), "alice")
	require.NoError(t, err)
	assert.Empty(t, roomID)
	assert.Equal(t, 2, rooms.calls)
	// The event itself is persisted even though the room never came up.
	assert.Contains(t, repo.events, created.ID)
}

func TestCreateEvent_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*event.CreateEventInput)
		wantErr error
	}{
		{"missing sport", func(in *event.CreateEventInput) { in.Sport = "  " }, event.ErrMissingFields},
		{"missing location", func(in *event.CreateEventInput) { in.Location = "" }, event.ErrMissingFields},
		{"missing date", func(in *event.CreateEventInput) { in.EventDate = "" }, event.ErrMissingFields},
		{"one participant", func(in *event.CreateEventInput) { in.TotalParticipants = 1 }, event.ErrTooFewParticipants},
		{"bad date format", func(in *event.CreateEventInput) { in.EventDate = "15/09/2026" }, event.ErrBadDate},
		{"end before start", func(in *event.CreateEventInput) { in.EndTime = "17:00" }, event.ErrBadTimeRange},
		{"end equals start", func(in *event.CreateEventInput) { in.EndTime = "18:00" }, event.ErrBadTimeRange},
		{"unparseable time", func(in *event.CreateEventInput) { in.StartTime = "6pm" }, event.ErrBadTimeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			rooms := &fakeProvisioner{}
			l := newLifecycle(repo, newFakeUserStore("alice"), rooms)

			in := validInput()
			tt.mutate(&in)

			_, _, err := l.CreateEvent(in, "alice")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.events)
			assert.Zero(t, rooms.calls)
		})
	}
}

func TestRecomputeTier_Thresholds(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, user.TierNewUser},
		{9, user.TierNewUser},
		{10, user.TierBronze},
		{19, user.TierBronze},
		{20, user.TierSilver},
		{29, user.TierSilver},
		{30, user.TierGold},
	}

	for _, tt := range tests {
		repo := newFakeEventRepo()
		users := newFakeUserStore("alice")
		l := newLifecycle(repo, users, &fakeProvisioner{roomID: "r"})

		for i := 0; i < tt.count; i++ {
			e := &event.Event{CreatorID: "alice"}
			require.NoError(t, repo.CreateEvent(e))
		}

		require.NoError(t, l.RecomputeTier("alice"))
		assert.Equal(t, tt.want, users.users["alice"].Tier, "count %d", tt.count)
	}
}

func TestCreateEvent_TierBumpsAtThreshold(t *testing.T) {
	repo := newFakeEventRepo()
	users := newFakeUserStore("alice")
	l := newLifecycle(repo, users, &fakeProvisioner{roomID: "r"})

	for i := 0; i < 10; i++ {
		_, _, err := l.CreateEvent(validInput(), "alice")
		require.NoError(t, err)
	}
	assert.Equal(t, user.TierBronze, users.users["alice"].Tier)
}
