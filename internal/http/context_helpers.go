package httpx

import (
	"context"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/domain/gate"
)

type (
	principalKey struct{}
	decisionKey  struct{}
)

// SetPrincipalInContext returns a child context that carries the request principal.
// If p is nil, the original ctx is returned unchanged.
func SetPrincipalInContext(ctx context.Context, p *domainauth.Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipalFromContext returns the principal resolved by the gate, if any.
func GetPrincipalFromContext(ctx context.Context) (*domainauth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*domainauth.Principal)
	return p, ok && p != nil
}

// GateInfo is what the gate recorded about a request, for logging further down the chain.
type GateInfo struct {
	OriginalPath string
	Decision     gate.Decision
}

func setGateInfo(ctx context.Context, info *GateInfo) context.Context {
	return context.WithValue(ctx, decisionKey{}, info)
}

// GetGateInfo returns the gate record for the request, if the gate saw it.
func GetGateInfo(ctx context.Context) (*GateInfo, bool) {
	info, ok := ctx.Value(decisionKey{}).(*GateInfo)
	return info, ok && info != nil
}
