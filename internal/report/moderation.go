package report

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/planupp/planupp/internal/user"
)

// Errors surfaced by the moderation service.
var (
	ErrSelfReport      = errors.New("you cannot report yourself")
	ErrEmptyReport     = errors.New("report text is required")
	ErrUserNotFound    = errors.New("reported user not found")
	ErrReportNotFound  = errors.New("report not found")
	ErrAlreadyResolved = errors.New("report has already been resolved")
)

// RoomCleaner sweeps a user out of chat rooms after a permanent ban.
// Satisfied by the chat package's membership service.
type RoomCleaner interface {
	RemoveFromAllRooms(userID string) (int, error)
}

// BanFlagCache publishes permanent-ban flags for request middleware to
// check. Satisfied by pkg/bancache.
type BanFlagCache interface {
	SetBanned(ctx context.Context, userID string) error
}

// BanResult describes the outcome of resolving a report with a ban.
type BanResult struct {
	Report            *Report `json:"report"`
	BanCount          int     `json:"ban_count"`
	PermanentlyBanned bool    `json:"permanently_banned"`
}

// Moderation drives the report lifecycle: file, ignore, or ban. A
// report is resolved at most once, and each ban resolution bumps the
// reported user's ban count exactly once.
type Moderation struct {
	repo  ReportRepository
	users user.UserRepository
	rooms RoomCleaner
	bans  BanFlagCache
}

// NewModeration creates a new moderation service
func NewModeration(repo ReportRepository, users user.UserRepository, rooms RoomCleaner, bans BanFlagCache) *Moderation {
	return &Moderation{repo: repo, users: users, rooms: rooms, bans: bans}
}

// FileReport records a new PENDING report against another user.
func (m *Moderation) FileReport(reporterID, reportedID, text, image string) (*Report, error) {
	if reporterID == reportedID {
		return nil, ErrSelfReport
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyReport
	}

	reported, err := m.users.GetUserByID(reportedID)
	if err != nil {
		return nil, err
	}
	if reported == nil {
		return nil, ErrUserNotFound
	}

	report := &Report{
		ReporterID: reporterID,
		ReportedID: reportedID,
		Text:       strings.TrimSpace(text),
		Image:      image,
		Status:     StatusPending,
	}
	if err := m.repo.CreateReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

// IgnoreReport dismisses a pending report without penalty.
func (m *Moderation) IgnoreReport(reportID string) (*Report, error) {
	rows, err := m.repo.TransitionStatus(reportID, StatusPending, StatusIgnored)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, m.resolveConflict(reportID)
	}
	return m.repo.GetReportByID(reportID)
}

// BanUser resolves a pending report with a ban. The report is claimed
// first with a conditional status flip, so a report that two admins
// race on increments the reported user's ban count only once. A user
// whose count reaches the permanent threshold is flagged in the ban
// cache and swept out of every chat room they do not administer.
func (m *Moderation) BanUser(ctx context.Context, reportID string) (*BanResult, error) {
	report, err := m.repo.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}

	rows, err := m.repo.TransitionStatus(reportID, StatusPending, StatusBanned)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAlreadyResolved
	}
	report.Status = StatusBanned

	banCount, err := m.users.IncrementBans(report.ReportedID)
	if err != nil {
		// The report is already claimed; surface the inconsistency
		// instead of silently unwinding it.
		log.Printf("report %s: ban count increment for %s failed: %v", reportID, report.ReportedID, err)
		return nil, err
	}

	result := &BanResult{
		Report:            report,
		BanCount:          banCount,
		PermanentlyBanned: banCount >= user.PermanentBanThreshold,
	}
	if result.PermanentlyBanned {
		m.enforcePermanentBan(ctx, report.ReportedID)
	}
	return result, nil
}

// enforcePermanentBan flags the user and sweeps them from their rooms.
// Both steps are best-effort: the ban count is already durable.
func (m *Moderation) enforcePermanentBan(ctx context.Context, userID string) {
	if err := m.bans.SetBanned(ctx, userID); err != nil {
		log.Printf("ban flag for %s failed: %v", userID, err)
	}
	removed, err := m.rooms.RemoveFromAllRooms(userID)
	if err != nil {
		log.Printf("room sweep for %s failed: %v", userID, err)
		return
	}
	log.Printf("permanently banned %s: removed from %d rooms", userID, removed)
}

// resolveConflict distinguishes a missing report from one that was
// already resolved, after a conditional transition touched zero rows.
func (m *Moderation) resolveConflict(reportID string) error {
	report, err := m.repo.GetReportByID(reportID)
	if err != nil {
		return err
	}
	if report == nil {
		return ErrReportNotFound
	}
	return ErrAlreadyResolved
}
