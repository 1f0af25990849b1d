package visibility

// FallbackPolicy decides what happens when the global level, which must
// always be explicit, turns out to be malformed or missing. The permissive
// default reproduces the historical behavior of treating broken
// configuration as public; fail-closed hides the content instead.
type FallbackPolicy string

// Fallback policies for a non-explicit global value.
const (
	FallbackPermissive FallbackPolicy = "permissive"
	FallbackClosed     FallbackPolicy = "fail_closed"
)

// Levels carries the three independently-overridable visibility values for
// one field: the field's own value, its section's value, and the
// directory-wide global value.
type Levels struct {
	Field   PMP
	Section PMP
	Global  PMP
}

// Resolver computes effective visibility decisions. It is pure: no I/O, no
// state beyond the configured fallback policy, and identical inputs always
// produce identical outputs.
type Resolver struct {
	fallback FallbackPolicy
}

// NewResolver creates a resolver with the given fallback policy. An
// unrecognized policy falls back to FallbackPermissive.
func NewResolver(policy FallbackPolicy) *Resolver {
	if policy != FallbackClosed {
		policy = FallbackPermissive
	}
	return &Resolver{fallback: policy}
}

// Effective walks the waterfall low-to-high and returns the first explicit
// value: field, then section, then global. A non-explicit global resolves
// per the fallback policy.
func (r *Resolver) Effective(l Levels) PMP {
	if l.Field.IsExplicit() {
		return l.Field
	}
	if l.Section.IsExplicit() {
		return l.Section
	}
	if l.Global.IsExplicit() {
		return l.Global
	}
	if r.fallback == FallbackClosed {
		return Private
	}
	return Public
}

// CanView reports whether viewer may see content carrying the given
// visibility levels.
//
// Authors and admins pass unconditionally; nothing can hide content from
// its owner or an administrator. For everyone else the effective value is
// the lowest explicit level: a field explicitly marked private stays hidden
// even when its section and the global default are public.
func (r *Resolver) CanView(l Levels, viewer ViewerContext) bool {
	if viewer.IsAuthor || viewer.IsAdmin {
		return true
	}
	return Grants(r.Effective(l), viewer)
}

// Grants maps one effective visibility value to a yes/no decision for
// viewer. An unrecognized value hides the content rather than erroring,
// because a visibility decision must never break a render.
func Grants(p PMP, viewer ViewerContext) bool {
	switch p {
	case Public:
		return true
	case Member:
		return viewer.IsLoggedIn
	case Private:
		return false
	default:
		return false
	}
}
