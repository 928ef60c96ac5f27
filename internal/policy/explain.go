package policy

import (
	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/domain/gate"
)

// ExplainInput describes a hypothetical caller.
type ExplainInput struct {
	Path          string
	Authenticated bool
	Permissions   domainauth.PermissionSet
	RedirectTo    string
}

// Explanation is what the gate would do for an ExplainInput.
type Explanation struct {
	Path           string
	Excluded       bool
	Classification gate.Classification
	Decision       gate.Decision
}

// Explain evaluates the policy for in without any session or store lookups.
func (p *Policy) Explain(in ExplainInput) Explanation {
	if p.Exclude.Match(in.Path) {
		return Explanation{
			Path:     in.Path,
			Excluded: true,
			Decision: gate.Decision{Outcome: gate.Allow, Reason: gate.ReasonPublic},
		}
	}
	c := p.Classifier.Classify(in.Path)
	return Explanation{
		Path:           in.Path,
		Classification: c,
		Decision: gate.Decide(p.Settings, gate.Input{
			Classification: c,
			ReturnPath:     in.Path,
			RedirectTo:     in.RedirectTo,
			Authenticated:  in.Authenticated,
			Permissions:    in.Permissions,
			ClassifyTarget: p.Classifier.Classify,
		}),
	}
}
