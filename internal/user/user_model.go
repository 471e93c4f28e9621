package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Tier labels, derived from the number of events a user has created.
const (
	TierNewUser = "New User"
	TierBronze  = "Bronze"
	TierSilver  = "Silver"
	TierGold    = "Gold"
)

// PermanentBanThreshold is the ban count at which a user is considered
// permanently banned. The flag is advisory; the account is not locked.
const PermanentBanThreshold = 5

// User mirrors an identity-provider account plus the profile fields the
// application owns. Bans only ever increases, by one per upheld report.
type User struct {
	ID            string         `gorm:"primaryKey" json:"id"` // UUID, set on create
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	Password      string         `json:"-"`
	Name          string         `json:"name"`
	Bio           string         `json:"bio"`
	Hashtags      pq.StringArray `gorm:"type:text[]" json:"hashtags"`
	ProfilePic    string         `json:"profile_pic"`
	Tier          string         `gorm:"default:'New User'" json:"tier"`
	Bans          int            `gorm:"default:0" json:"bans"`
	CreatedEvents pq.Int64Array  `gorm:"type:bigint[]" json:"created_events"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// BeforeCreate generates a UUID if the ID has not been set (for example
// when mirroring an identity-provider account that supplies its own).
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// IsPermanentlyBanned reports whether the user's ban count has reached the
// permanent-ban threshold.
func (u *User) IsPermanentlyBanned() bool {
	return u.Bans >= PermanentBanThreshold
}

// RefreshToken stores an issued refresh token so it can be revoked.
type RefreshToken struct {
	gorm.Model
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
}

// TierForEventCount derives the profile tier from the number of created
// events. The tier is recomputed from this function, never hand-edited.
func TierForEventCount(count int) string {
	switch {
	case count >= 30:
		return TierGold
	case count >= 20:
		return TierSilver
	case count >= 10:
		return TierBronze
	default:
		return TierNewUser
	}
}
