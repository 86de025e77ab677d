package service

import (
	"strings"

	"github.com/creatorhub/session-gateway/internal/core/domain"
)

// Merge combines the identity fetch with whichever role profile fetch
// resolved into a single ResolvedUser. It is deterministic, performs no I/O,
// and never mutates its inputs; it is re-evaluated on every resolution.
//
// Precedence:
//  1. no identity → no session (nil)
//  2. a profile already embedded in the identity wins outright
//  3. USER: attach the fetched regular profile
//  4. INFLUENCER: attach the influencer profile via fallback synthesis and
//     record the influencer reference
//  5. otherwise the identity passes through unchanged (profile still pending
//     or the role needs none)
func Merge(identity *domain.Identity, regular *domain.RegularProfile, influencer *domain.InfluencerProfile) *domain.ResolvedUser {
	if identity == nil {
		return nil
	}

	user := &domain.ResolvedUser{
		ID:            identity.ID,
		Email:         identity.Email,
		Role:          identity.Role,
		Status:        identity.Status,
		EmailVerified: identity.EmailVerified,
	}

	switch {
	case identity.Profile != nil:
		user.Profile = cloneProfile(identity.Profile)
	case identity.Role == domain.RoleUser && regular != nil:
		user.Profile = cloneProfile(regular)
	case identity.Role == domain.RoleInfluencer && influencer != nil:
		user.Profile = SynthesizeProfile(influencer, identity.Email)
		user.InfluencerProfile = &domain.InfluencerRef{ID: influencer.ID}
	}

	return user
}

// SynthesizeProfile derives a display profile for an influencer whose nested
// regular profile may be missing upstream. Synthesized defaults come from the
// influencer record and the email's local part; any field present on the
// nested profile overrides the default, never the reverse.
//
// This is a last-resort display aid papering over an upstream inconsistency.
// It never writes back to any store, and uses are counted so reliance on it
// stays visible.
func SynthesizeProfile(influencer *domain.InfluencerProfile, email string) *domain.RegularProfile {
	if influencer == nil {
		return nil
	}

	local := localPart(email)
	p := &domain.RegularProfile{
		ID:       influencer.ID,
		Username: local,
		FullName: local,
	}

	nested := influencer.Profile
	if nested == nil {
		return p
	}

	if nested.ID != "" {
		p.ID = nested.ID
	}
	if nested.Username != "" {
		p.Username = nested.Username
	}
	if nested.FullName != "" {
		p.FullName = nested.FullName
	}
	p.Bio = nested.Bio
	p.Location = nested.Location
	p.AvatarURL = nested.AvatarURL
	if nested.SocialLinks != nil {
		p.SocialLinks = cloneLinks(nested.SocialLinks)
	}

	return p
}

// localPart returns everything before the first "@" of an email address.
func localPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

func cloneProfile(p *domain.RegularProfile) *domain.RegularProfile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.SocialLinks = cloneLinks(p.SocialLinks)
	return &clone
}

func cloneLinks(links map[string]string) map[string]string {
	if links == nil {
		return nil
	}
	out := make(map[string]string, len(links))
	for k, v := range links {
		out[k] = v
	}
	return out
}
