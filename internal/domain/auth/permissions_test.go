package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermissions(t *testing.T) {
	set, rejected := ParsePermissions([]string{"finance", " Warehouse ", "root", "", "all"})

	assert.True(t, set.Has(PermFinance))
	assert.True(t, set.Has(PermWarehouse))
	assert.True(t, set.Has(PermAll))
	assert.Len(t, set, 3)
	assert.Equal(t, []string{"root", ""}, rejected)
}

func TestParsePermissions_Nil(t *testing.T) {
	set, rejected := ParsePermissions(nil)
	require.NotNil(t, set)
	assert.Empty(t, set)
	assert.Empty(t, rejected)
}

func TestPermissionSet_Grants(t *testing.T) {
	tests := []struct {
		name     string
		have     PermissionSet
		required PermissionSet
		want     bool
	}{
		{"wildcard grants anything", NewPermissionSet(PermAll), NewPermissionSet(PermFinance), true},
		{"wildcard grants wildcard requirement", NewPermissionSet(PermAll), NewPermissionSet(PermAll), true},
		{"shared tag", NewPermissionSet(PermFinance, PermOrders), NewPermissionSet(PermFinance), true},
		{"disjoint", NewPermissionSet(PermWarehouse), NewPermissionSet(PermFinance), false},
		{"tag does not satisfy wildcard requirement", NewPermissionSet(PermFinance), NewPermissionSet(PermAll), false},
		{"empty set", NewPermissionSet(), NewPermissionSet(PermFinance), false},
		{"nil set", nil, NewPermissionSet(PermFinance), false},
		{"empty requirement", NewPermissionSet(PermAll), NewPermissionSet(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.have.Grants(tt.required))
		})
	}
}

func TestPermissionSet_UnionWithout(t *testing.T) {
	base := NewPermissionSet(PermFinance)
	grown := base.Union(NewPermissionSet(PermOrders, PermFinance))
	assert.Equal(t, []string{"finance", "orders"}, grown.Strings())
	assert.Len(t, base, 1, "union must not mutate the receiver")

	shrunk := grown.Without(NewPermissionSet(PermFinance))
	assert.Equal(t, []string{"orders"}, shrunk.Strings())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Dealer ")
	require.NoError(t, err)
	assert.Equal(t, RoleDealer, r)

	_, err = ParseRole("guest")
	assert.Error(t, err)
}

func TestDefaultPermissions(t *testing.T) {
	assert.True(t, DefaultPermissions(RoleAdmin).IsUniversal())
	assert.True(t, DefaultPermissions(RoleFinancier).Has(PermFinance))
	assert.Empty(t, DefaultPermissions(RoleDealer))
	assert.Empty(t, DefaultPermissions(RoleCelebrity))
	assert.Empty(t, DefaultPermissions(RoleUser))
}
