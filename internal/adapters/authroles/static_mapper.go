package authroles

import (
	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/ports"
)

// StaticRoleMapper maps IdP groups to roles by exact group membership.
// When a user belongs to several mapped groups the most privileged role wins:
// admin, then financier, then dealer, then celebrity. Everyone else is a plain user.
type StaticRoleMapper struct {
	AdminGroup     string
	FinancierGroup string
	DealerGroup    string
	CelebrityGroup string
}

var _ ports.RoleMapper = StaticRoleMapper{}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	member := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		member[g] = struct{}{}
	}

	for _, c := range []struct {
		group string
		role  domainauth.Role
	}{
		{m.AdminGroup, domainauth.RoleAdmin},
		{m.FinancierGroup, domainauth.RoleFinancier},
		{m.DealerGroup, domainauth.RoleDealer},
		{m.CelebrityGroup, domainauth.RoleCelebrity},
	} {
		if c.group == "" {
			continue
		}
		if _, ok := member[c.group]; ok {
			return c.role
		}
	}
	return domainauth.RoleUser
}
