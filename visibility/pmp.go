// Package visibility implements the Public/Member/Private (PMP) visibility
// model for member profile content. A visibility value is resolved through a
// three-level waterfall (field, section, global) where the lowest explicit
// value wins, and then gated against the viewing user's context.
//
// Callers that receive a negative decision must emit nothing at all for the
// hidden field: no placeholder element, no empty container. The resolver has
// no rendering knowledge; that contract binds its consumers.
package visibility

import "fmt"

// PMP is a visibility value. The three explicit states gate who can see a
// piece of content; Inherit defers the decision to the next level up the
// waterfall.
type PMP string

// Visibility states.
const (
	Public  PMP = "public"
	Member  PMP = "member"
	Private PMP = "private"
	Inherit PMP = "inherit"
)

// ParsePMP parses a stored visibility string. Unknown strings are preserved
// as-is rather than rejected: at the field and section levels an unknown
// value is simply non-explicit (the waterfall continues past it), and an
// unknown effective value fails closed at resolution time.
func ParsePMP(s string) PMP {
	return PMP(s)
}

// IsExplicit reports whether p is one of the three explicit states that
// terminate the waterfall.
func (p PMP) IsExplicit() bool {
	switch p {
	case Public, Member, Private:
		return true
	default:
		return false
	}
}

// Valid reports whether p is a recognized value, including Inherit.
func (p PMP) Valid() bool {
	return p.IsExplicit() || p == Inherit
}

// String returns the stored string form.
func (p PMP) String() string {
	return string(p)
}

// UnmarshalText implements encoding.TextUnmarshaler so PMP values decode
// from JSON and YAML documents.
func (p *PMP) UnmarshalText(text []byte) error {
	*p = ParsePMP(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p PMP) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// MustExplicit returns p if it is explicit, or an error naming the value.
// Used where configuration requires a terminal value (the global level).
func (p PMP) MustExplicit() (PMP, error) {
	if !p.IsExplicit() {
		return "", fmt.Errorf("visibility value %q is not explicit (want public, member, or private)", string(p))
	}
	return p, nil
}
