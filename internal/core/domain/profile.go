package domain

// RegularProfile is the supplementary profile attached to brand (USER)
// accounts, and nested inside influencer profiles.
type RegularProfile struct {
	ID          string            `json:"id"`
	Username    string            `json:"username"`
	FullName    string            `json:"full_name"`
	Bio         string            `json:"bio,omitempty"`
	Location    string            `json:"location,omitempty"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
}

// InfluencerProfile is the role-specific payload for INFLUENCER accounts.
// Profile may be absent: the upstream API does not guarantee the nested
// regular profile exists for every influencer record.
type InfluencerProfile struct {
	ID               string            `json:"id"`
	NicheTags        []string          `json:"niche_tags"`
	SocialMediaLinks map[string]string `json:"social_media_links,omitempty"`
	Bio              string            `json:"bio,omitempty"`
	Location         string            `json:"location,omitempty"`
	Profile          *RegularProfile   `json:"profile,omitempty"`
}

// InfluencerRef is the lightweight marker attached to a resolved influencer
// so downstream consumers can reference the influencer record without
// carrying the full payload.
type InfluencerRef struct {
	ID string `json:"id"`
}
