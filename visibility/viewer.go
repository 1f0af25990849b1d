package visibility

import "fmt"

// ViewerContext describes who is looking at a profile. It is ephemeral,
// derived per request, and never persisted. A spoofed context produced by
// SpoofViewer has exactly the same shape as a real one; the resolver cannot
// and should not distinguish them.
type ViewerContext struct {
	IsAuthor   bool
	IsAdmin    bool
	IsLoggedIn bool
}

// Identity is the minimal slice of a host platform's user record that
// visibility decisions need. The zero value is an anonymous visitor.
type Identity struct {
	UserID   string
	LoggedIn bool
	Admin    bool
}

// ResolveViewer derives a ViewerContext for identity viewing the profile
// owned by ownerID. Authorship requires a logged-in identity; an empty
// UserID never matches an owner.
func ResolveViewer(identity Identity, ownerID string) ViewerContext {
	return ViewerContext{
		IsAuthor:   identity.LoggedIn && identity.UserID != "" && identity.UserID == ownerID,
		IsAdmin:    identity.Admin,
		IsLoggedIn: identity.LoggedIn,
	}
}

// SpoofLevel selects which kind of non-privileged viewer to synthesize for
// self-preview. There are no author or admin spoof levels: those viewers
// already see everything, so there is nothing to preview.
type SpoofLevel string

// Spoofable preview levels.
const (
	SpoofMember SpoofLevel = "member"
	SpoofPublic SpoofLevel = "public"
)

// SpoofViewer returns a synthetic viewer context for self-preview: a
// logged-in non-owner for SpoofMember, a fully anonymous visitor for
// SpoofPublic. Spoofing is a display simulation only; callers must gate it
// behind an author or admin check before honoring a spoof request.
func SpoofViewer(level SpoofLevel) (ViewerContext, error) {
	switch level {
	case SpoofMember:
		return ViewerContext{IsLoggedIn: true}, nil
	case SpoofPublic:
		return ViewerContext{}, nil
	default:
		return ViewerContext{}, fmt.Errorf("unknown spoof level %q (want %q or %q)", level, SpoofMember, SpoofPublic)
	}
}
