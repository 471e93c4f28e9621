package auth

import (
	"strings"
	"time"

	"github.com/planupp/planupp/internal/user"
)

// Defaults applied to every freshly registered profile.
const (
	defaultBio        = "I'm new to PlanUpp!"
	defaultProfilePic = "/placeholder.svg?height=80&width=80"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"password123"`
	Name     string `json:"name,omitempty" binding:"omitempty,max=100" example:"Jane"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken          string `json:"refresh_token"`           // Optional: specific token to invalidate
	InvalidateAllSessions bool   `json:"invalidate_all_sessions"` // If true, invalidate all user's sessions
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Bio        string    `json:"bio"`
	Hashtags   []string  `json:"hashtags"`
	ProfilePic string    `json:"profile_pic"`
	Tier       string    `json:"tier"`
	Bans       int       `json:"bans"`
	CreatedAt  time.Time `json:"created_at"`
}

func FilterUserRecord(u *user.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Bio:        u.Bio,
		Hashtags:   u.Hashtags,
		ProfilePic: u.ProfilePic,
		Tier:       u.Tier,
		Bans:       u.Bans,
		CreatedAt:  u.CreatedAt,
	}
}

// newUserRecord builds the Users row that mirrors a fresh identity account.
// The display name falls back to the email's local part.
func newUserRecord(email, passwordHash, name string) *user.User {
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	return &user.User{
		Email:      email,
		Password:   passwordHash,
		Name:       name,
		Bio:        defaultBio,
		ProfilePic: defaultProfilePic,
		Tier:       user.TierNewUser,
	}
}
