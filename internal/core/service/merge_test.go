package service

import (
	"reflect"
	"testing"

	"github.com/creatorhub/session-gateway/internal/core/domain"
)

func TestMerge_NoIdentity(t *testing.T) {
	if got := Merge(nil, nil, nil); got != nil {
		t.Fatalf("expected nil for absent identity, got %+v", got)
	}
}

func TestMerge_IdentityProfileWins(t *testing.T) {
	embedded := &domain.RegularProfile{ID: "p0", Username: "embedded"}
	identity := &domain.Identity{
		ID:      "u1",
		Email:   "brand@x.com",
		Role:    domain.RoleUser,
		Profile: embedded,
	}
	fetched := &domain.RegularProfile{ID: "p1", Username: "fetched"}

	user := Merge(identity, fetched, nil)
	if user.Profile == nil || user.Profile.Username != "embedded" {
		t.Fatalf("expected embedded profile to win, got %+v", user.Profile)
	}
}

func TestMerge_UserRoleAttachesRegularProfile(t *testing.T) {
	identity := &domain.Identity{ID: "u1", Email: "brand@x.com", Role: domain.RoleUser}
	fetched := &domain.RegularProfile{ID: "p1", Username: "acme", FullName: "Acme Co"}

	user := Merge(identity, fetched, nil)
	if user.Profile == nil || user.Profile.ID != "p1" {
		t.Fatalf("expected fetched regular profile, got %+v", user.Profile)
	}
	if user.InfluencerProfile != nil {
		t.Fatalf("regular user should not carry an influencer ref")
	}
}

func TestMerge_InfluencerSynthesizesFromEmail(t *testing.T) {
	identity := &domain.Identity{ID: "u1", Email: "jane@x.com", Role: domain.RoleInfluencer}
	influencer := &domain.InfluencerProfile{ID: "i1"} // nested profile absent

	user := Merge(identity, nil, influencer)

	want := &domain.RegularProfile{ID: "i1", Username: "jane", FullName: "jane"}
	if !reflect.DeepEqual(user.Profile, want) {
		t.Fatalf("synthesized profile mismatch:\n got  %+v\n want %+v", user.Profile, want)
	}
	if user.InfluencerProfile == nil || user.InfluencerProfile.ID != "i1" {
		t.Fatalf("expected influencer ref i1, got %+v", user.InfluencerProfile)
	}
}

func TestMerge_NestedProfileOverridesSynthesizedDefaults(t *testing.T) {
	identity := &domain.Identity{ID: "u1", Email: "jane@x.com", Role: domain.RoleInfluencer}
	influencer := &domain.InfluencerProfile{
		ID: "i1",
		Profile: &domain.RegularProfile{
			ID:       "p9",
			Username: "realjane",
			Bio:      "travel creator",
		},
	}

	user := Merge(identity, nil, influencer)

	p := user.Profile
	if p.ID != "p9" || p.Username != "realjane" || p.Bio != "travel creator" {
		t.Fatalf("nested fields must win, got %+v", p)
	}
	// FullName absent on the nested profile: the synthesized default stays.
	if p.FullName != "jane" {
		t.Fatalf("expected synthesized full name for missing nested field, got %q", p.FullName)
	}
}

func TestMerge_ProfilePendingPassesIdentityThrough(t *testing.T) {
	identity := &domain.Identity{ID: "u1", Email: "jane@x.com", Role: domain.RoleInfluencer}

	user := Merge(identity, nil, nil)
	if user == nil || user.Profile != nil {
		t.Fatalf("expected identity without profile while pending, got %+v", user)
	}
	if user.ID != "u1" || user.Role != domain.RoleInfluencer {
		t.Fatalf("identity fields must pass through, got %+v", user)
	}
}

func TestMerge_AdminNeedsNoProfile(t *testing.T) {
	identity := &domain.Identity{ID: "a1", Email: "ops@x.com", Role: domain.RoleAdmin}

	user := Merge(identity, nil, nil)
	if user.Profile != nil {
		t.Fatalf("admin should have no profile, got %+v", user.Profile)
	}
}

func TestMerge_DeterministicAndSideEffectFree(t *testing.T) {
	identity := &domain.Identity{ID: "u1", Email: "jane@x.com", Role: domain.RoleInfluencer}
	influencer := &domain.InfluencerProfile{
		ID:      "i1",
		Profile: &domain.RegularProfile{Username: "realjane", SocialLinks: map[string]string{"ig": "@realjane"}},
	}

	first := Merge(identity, nil, influencer)
	second := Merge(identity, nil, influencer)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("merge is not deterministic:\n first  %+v\n second %+v", first, second)
	}

	// Mutating the output must not leak back into the inputs.
	first.Profile.Username = "tampered"
	first.Profile.SocialLinks["ig"] = "@tampered"
	if influencer.Profile.Username != "realjane" {
		t.Fatalf("merge output aliases the input profile")
	}
	if influencer.Profile.SocialLinks["ig"] != "@realjane" {
		t.Fatalf("merge output aliases the input social links")
	}
}

func TestSynthesizeProfile_EmailWithoutAtSign(t *testing.T) {
	p := SynthesizeProfile(&domain.InfluencerProfile{ID: "i1"}, "not-an-email")
	if p.Username != "not-an-email" || p.FullName != "not-an-email" {
		t.Fatalf("expected raw value when no @ present, got %+v", p)
	}
}

func TestSynthesizeProfile_NilInfluencer(t *testing.T) {
	if p := SynthesizeProfile(nil, "jane@x.com"); p != nil {
		t.Fatalf("expected nil, got %+v", p)
	}
}
