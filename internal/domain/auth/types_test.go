package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ExpiryBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := Session{ID: "s1", UserID: "u1", Role: RoleDealer, ExpiresAt: now.Add(30 * time.Minute)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(s.ExpiresAt), "expired exactly at ExpiresAt")
	assert.True(t, s.Expired(s.ExpiresAt.Add(time.Second)))

	assert.True(t, s.ExpiresWithin(now, 30*time.Minute), "window equal to remaining time")
	assert.False(t, s.ExpiresWithin(now, 29*time.Minute))

	stale := Session{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, stale.ExpiresWithin(now, 0))
}

func TestParseRole_Normalizes(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "admin", want: RoleAdmin},
		{in: "  Admin ", want: RoleAdmin},
		{in: " Dealer", want: RoleDealer},
		{in: "CELEBRITY", want: RoleCelebrity},
		{in: "Financier", want: RoleFinancier},
		{in: "user", want: RoleUser},
		{in: "guest", wantErr: true},
		{in: "", wantErr: true},
		{in: "admin2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown role")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoles_AllValid(t *testing.T) {
	assert.Equal(t, []Role{RoleAdmin, RoleDealer, RoleCelebrity, RoleFinancier, RoleUser}, Roles())
	for _, r := range Roles() {
		assert.True(t, r.Valid(), "role %q", r)
	}
	assert.False(t, Role("guest").Valid())
	assert.False(t, Role("").Valid())
}
