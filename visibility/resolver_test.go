package visibility

import "testing"

var (
	anonViewer   = ViewerContext{}
	memberViewer = ViewerContext{IsLoggedIn: true}
	authorViewer = ViewerContext{IsAuthor: true, IsLoggedIn: true}
	adminViewer  = ViewerContext{IsAdmin: true, IsLoggedIn: true}
)

func TestCanViewAuthorAdminBypass(t *testing.T) {
	r := NewResolver(FallbackPermissive)

	// Every level combination, including fully private, stays visible to
	// the profile owner and to admins.
	values := []PMP{Public, Member, Private, Inherit}
	for _, field := range values {
		for _, sec := range values {
			for _, global := range values {
				l := Levels{Field: field, Section: sec, Global: global}
				if !r.CanView(l, authorViewer) {
					t.Errorf("author hidden from %+v", l)
				}
				if !r.CanView(l, adminViewer) {
					t.Errorf("admin hidden from %+v", l)
				}
			}
		}
	}
}

func TestCanViewLowestExplicitWins(t *testing.T) {
	r := NewResolver(FallbackPermissive)

	tests := []struct {
		name   string
		levels Levels
		viewer ViewerContext
		want   bool
	}{
		{
			name:   "private field hidden despite public section and global",
			levels: Levels{Field: Private, Section: Public, Global: Public},
			viewer: memberViewer,
			want:   false,
		},
		{
			name:   "public field visible despite private section and global",
			levels: Levels{Field: Public, Section: Private, Global: Private},
			viewer: anonViewer,
			want:   true,
		},
		{
			name:   "section override beats global",
			levels: Levels{Field: Inherit, Section: Private, Global: Public},
			viewer: memberViewer,
			want:   false,
		},
		{
			name:   "full inherit chain falls through to global",
			levels: Levels{Field: Inherit, Section: Inherit, Global: Member},
			viewer: memberViewer,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.CanView(tt.levels, tt.viewer); got != tt.want {
				t.Errorf("CanView(%+v) = %v, want %v", tt.levels, got, tt.want)
			}
		})
	}
}

func TestCanViewWaterfallTerminates(t *testing.T) {
	r := NewResolver(FallbackPermissive)

	for _, global := range []PMP{Public, Member, Private} {
		l := Levels{Field: Inherit, Section: Inherit, Global: global}
		if got := r.Effective(l); got != global {
			t.Errorf("Effective(%+v) = %q, want %q", l, got, global)
		}
	}
}

func TestCanViewMemberGating(t *testing.T) {
	r := NewResolver(FallbackPermissive)
	l := Levels{Field: Member, Section: Member, Global: Member}

	if r.CanView(l, anonViewer) {
		t.Error("anonymous viewer should not see member-gated content")
	}
	if !r.CanView(l, memberViewer) {
		t.Error("logged-in viewer should see member-gated content")
	}
}

func TestCanViewUnknownValues(t *testing.T) {
	r := NewResolver(FallbackPermissive)

	// An unknown field value is non-explicit, so the waterfall continues
	// past it to the public global.
	l := Levels{Field: PMP("bogus"), Section: Inherit, Global: Public}
	if !r.CanView(l, anonViewer) {
		t.Error("unknown field value should fall through to global")
	}

	// An unknown effective value fails closed at the mapping step.
	if Grants(PMP("bogus"), anonViewer) {
		t.Error("Grants should fail closed on unknown value")
	}
	if Grants(PMP("bogus"), memberViewer) {
		t.Error("Grants should fail closed on unknown value for members too")
	}
}

// The permissive treatment of a malformed global is a deliberate policy
// choice carried over from the original directory behavior; fail-closed is
// available by configuration.
func TestFallbackPolicy(t *testing.T) {
	broken := Levels{Field: Inherit, Section: Inherit, Global: PMP("corrupt")}

	permissive := NewResolver(FallbackPermissive)
	if !permissive.CanView(broken, anonViewer) {
		t.Error("permissive resolver should default a malformed global to public")
	}

	closed := NewResolver(FallbackClosed)
	if closed.CanView(broken, memberViewer) {
		t.Error("fail-closed resolver should hide content on a malformed global")
	}
}

func TestCanViewDeterministic(t *testing.T) {
	r := NewResolver(FallbackPermissive)
	l := Levels{Field: Inherit, Section: Member, Global: Public}

	first := r.CanView(l, memberViewer)
	for i := 0; i < 100; i++ {
		if r.CanView(l, memberViewer) != first {
			t.Fatal("CanView is not deterministic")
		}
	}
}
