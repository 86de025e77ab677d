package domain

// ResolvedUser is the merged view of the identity and profile fetches exposed
// to guards and handlers. When the role requires a profile and resolution
// completed without error, Profile is either the fetched profile or a
// synthesized fallback — never nil. Roles without a profile leave it nil.
type ResolvedUser struct {
	ID                string          `json:"id"`
	Email             string          `json:"email"`
	Role              Role            `json:"role"`
	Status            string          `json:"status"`
	EmailVerified     bool            `json:"email_verified"`
	Profile           *RegularProfile `json:"profile,omitempty"`
	InfluencerProfile *InfluencerRef  `json:"influencer_profile,omitempty"`
}

// Snapshot is the session context value derived fresh on every request from
// the underlying query states. Nothing in it is cached across requests.
type Snapshot struct {
	User            *ResolvedUser `json:"user"`
	IsAuthenticated bool          `json:"is_authenticated"`
	IsLoading       bool          `json:"is_loading"`
	IsError         bool          `json:"is_error"`

	// ProfileMissing is set when the role requires a profile and the profile
	// fetch resolved to an authoritative not-found. It is deliberately not an
	// error: the completeness guard turns it into a setup redirect.
	ProfileMissing bool `json:"profile_missing,omitempty"`
}

// DecisionKind enumerates the outcomes a guard can produce for one request.
type DecisionKind int

const (
	DecisionAllow    DecisionKind = iota // pass the request through
	DecisionLoading                      // resolution pending, serve a placeholder
	DecisionRedirect                     // send the visitor elsewhere
	DecisionDeny                         // serve nothing
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// GuardDecision is the pure output of a guard for the current request.
// Target is set only for DecisionRedirect. Decisions are recomputed per
// request and never cached.
type GuardDecision struct {
	Kind   DecisionKind
	Target string
}

// Setup routes are fixed by role; nothing about them is configurable.
const (
	SetupRouteInfluencer = "/influencer/setup"
	SetupRouteUser       = "/profile/setup"
)

// SetupRoute returns the role-specific profile setup route, or "" when the
// role has no setup flow.
func SetupRoute(role Role) string {
	switch role {
	case RoleInfluencer:
		return SetupRouteInfluencer
	case RoleUser:
		return SetupRouteUser
	default:
		return ""
	}
}
