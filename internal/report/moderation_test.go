package report_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/planupp/planupp/internal/report"
	"github.com/planupp/planupp/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	reports map[string]*report.Report
	nextID  int
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[string]*report.Report)}
}

func (f *fakeReportRepo) CreateReport(r *report.Report) error {
	if r.ID == "" {
		f.nextID++
		r.ID = fmt.Sprintf("report-%d", f.nextID)
	}
	dup := *r
	f.reports[r.ID] = &dup
	return nil
}

func (f *fakeReportRepo) GetReportByID(id string) (*report.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, nil
	}
	dup := *r
	return &dup, nil
}

func (f *fakeReportRepo) ListReports(status string, page, limit int) ([]report.Report, int64, error) {
	var out []report.Report
	for _, r := range f.reports {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReportRepo) TransitionStatus(id, from, to string) (int64, error) {
	r, ok := f.reports[id]
	if !ok || r.Status != from {
		return 0, nil
	}
	r.Status = to
	return 1, nil
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
	if u, ok := s.users[id]; ok {
		u.Tier = tier
	}
	return nil
}

func (s *fakeUserStore) AppendCreatedEvent(id string, eventID uint) error { return nil }

func (s *fakeUserStore) IncrementBans(id string) (int, error) {
	u, ok := s.users[id]
	if !ok {
		return 0, errors.New("record not found")
	}
	u.Bans++
	return u.Bans, nil
}

type fakeRoomCleaner struct {
	swept map[string]int
}

func (f *fakeRoomCleaner) RemoveFromAllRooms(userID string) (int, error) {
	if f.swept == nil {
		f.swept = make(map[string]int)
	}
	f.swept[userID]++
	return 2, nil
}

type fakeBanCache struct {
	flagged map[string]bool
}

func (f *fakeBanCache) SetBanned(ctx context.Context, userID string) error {
	if f.flagged == nil {
		f.flagged = make(map[string]bool)
	}
	f.flagged[userID] = true
	return nil
}

func (f *fakeBanCache) IsBanned(ctx context.Context, userID string) (bool, error) {
	return f.flagged[userID], nil
}

type moderationFixture struct {
	repo    *fakeReportRepo
	users   *fakeUserStore
	cleaner *fakeRoomCleaner
	cache   *fakeBanCache
	svc     *report.Moderation
}

func newFixture(userIDs ...string) *moderationFixture {
	f := &moderationFixture{
		repo:    newFakeReportRepo(),
		users:   newFakeUserStore(userIDs...),
		cleaner: &fakeRoomCleaner{},
		cache:   &fakeBanCache{},
	}
	f.svc = report.NewModeration(f.repo, f.users, f.cleaner, f.cache)
	return f
}

func (f *moderationFixture) pendingReport(t *testing.T, reporter, reported string) *report.Report {
	t.Helper()
	r, err := f.svc.FileReport(reporter, reported, "spamming the room", "")
	require.NoError(t, err)
	require.Equal(t, report.StatusPending, r.Status)
	return r
}

func TestFileReport(t *testing.T) {
	f := newFixture("alice", "mallory")

	r := f.pendingReport(t, "alice", "mallory")
	assert.Equal(t, "alice", r.ReporterID)
	assert.Equal(t, "mallory", r.ReportedID)

	_, err := f.svc.FileReport("alice", "alice", "self", "")
	assert.ErrorIs(t, err, report.ErrSelfReport)

	_, err = f.svc.FileReport("alice", "mallory", "   ", "")
	assert.ErrorIs(t, err, report.ErrEmptyReport)

	_, err = f.svc.FileReport("alice", "ghost", "who", "")
	assert.ErrorIs(t, err, report.ErrUserNotFound)
}

func TestBanUser_IncrementsOnce(t *testing.T) {
	f := newFixture("alice", "mallory")
	r := f.pendingReport(t, "alice", "mallory")

	result, err := f.svc.BanUser(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BanCount)
	assert.False(t, result.PermanentlyBanned)
	assert.Equal(t, report.StatusBanned, result.Report.Status)

	// A second resolution of the same report is rejected and the ban
	// count stays where it was.
	_, err = f.svc.BanUser(context.Background(), r.ID)
	assert.ErrorIs(t, err, report.ErrAlreadyResolved)
	assert.Equal(t, 1, f.users.users["mallory"].Bans)
}

func TestBanUser_ReportNotFound(t *testing.T) {
	f := newFixture("alice")
	_, err := f.svc.BanUser(context.Background(), "missing")
	assert.ErrorIs(t, err, report.ErrReportNotFound)
}

func TestBanUser_PermanentAtThreshold(t *testing.T) {
	f := newFixture("alice", "mallory")

	for i := 0; i < user.PermanentBanThreshold; i++ {
		r := f.pendingReport(t, "alice", "mallory")
		result, err := f.svc.BanUser(context.Background(), r.ID)
		require.NoError(t, err)

		if i < user.PermanentBanThreshold-1 {
			assert.False(t, result.PermanentlyBanned, "ban %d", i+1)
			assert.Empty(t, f.cache.flagged)
			assert.Empty(t, f.cleaner.swept)
		} else {
			assert.True(t, result.PermanentlyBanned)
		}
	}

	// The fifth ban flags the user and sweeps their rooms, once.
	assert.True(t, f.cache.flagged["mallory"])
	assert.Equal(t, 1, f.cleaner.swept["mallory"])
	assert.Equal(t, user.PermanentBanThreshold, f.users.users["mallory"].Bans)
}

func TestIgnoreReport_NoPenalty(t *testing.T) {
	f := newFixture("alice", "mallory")
	r := f.pendingReport(t, "alice", "mallory")

	ignored, err := f.svc.IgnoreReport(r.ID)
	require.NoError(t, err)
	assert.Equal(t, report.StatusIgnored, ignored.Status)
	assert.Equal(t, 0, f.users.users["mallory"].Bans)
	assert.Empty(t, f.cleaner.swept)

	// Resolved reports stay resolved; a later ban attempt is rejected.
	_, err = f.svc.BanUser(context.Background(), r.ID)
	assert.ErrorIs(t, err, report.ErrAlreadyResolved)

	_, err = f.svc.IgnoreReport(r.ID)
	assert.ErrorIs(t, err, report.ErrAlreadyResolved)

	_, err = f.svc.IgnoreReport("missing")
	assert.ErrorIs(t, err, report.ErrReportNotFound)
}
