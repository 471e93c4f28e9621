package user_test

import (
	"testing"

	"github.com/planupp/planupp/internal/user"
	"github.com/stretchr/testify/assert"
)

func TestTierForEventCount(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  string
	}{
		{"zero events", 0, user.TierNewUser},
		{"just below bronze", 9, user.TierNewUser},
		{"bronze threshold", 10, user.TierBronze},
		{"just below silver", 19, user.TierBronze},
		{"silver threshold", 20, user.TierSilver},
		{"just below gold", 29, user.TierSilver},
		{"gold threshold", 30, user.TierGold},
		{"well past gold", 100, user.TierGold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, user.TierForEventCount(tt.count))
		})
	}
}

func TestIsPermanentlyBanned(t *testing.T) {
	u := &user.User{Bans: 4}
	assert.False(t, u.IsPermanentlyBanned())

	u.Bans = 5
	assert.True(t, u.IsPermanentlyBanned())

	u.Bans = 7
	assert.True(t, u.IsPermanentlyBanned())
}
