package visibility

import "testing"

func TestResolveViewer(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		ownerID  string
		want     ViewerContext
	}{
		{
			name:     "anonymous visitor",
			identity: Identity{},
			ownerID:  "u-100",
			want:     ViewerContext{},
		},
		{
			name:     "logged-in non-owner",
			identity: Identity{UserID: "u-200", LoggedIn: true},
			ownerID:  "u-100",
			want:     ViewerContext{IsLoggedIn: true},
		},
		{
			name:     "profile owner",
			identity: Identity{UserID: "u-100", LoggedIn: true},
			ownerID:  "u-100",
			want:     ViewerContext{IsAuthor: true, IsLoggedIn: true},
		},
		{
			name:     "admin viewing someone else",
			identity: Identity{UserID: "u-1", LoggedIn: true, Admin: true},
			ownerID:  "u-100",
			want:     ViewerContext{IsAdmin: true, IsLoggedIn: true},
		},
		{
			name:     "empty user id never matches an empty owner",
			identity: Identity{LoggedIn: true},
			ownerID:  "",
			want:     ViewerContext{IsLoggedIn: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveViewer(tt.identity, tt.ownerID); got != tt.want {
				t.Errorf("ResolveViewer() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSpoofViewer(t *testing.T) {
	member, err := SpoofViewer(SpoofMember)
	if err != nil {
		t.Fatalf("SpoofViewer(member): %v", err)
	}
	if member != (ViewerContext{IsLoggedIn: true}) {
		t.Errorf("member spoof = %+v, want logged-in non-owner", member)
	}

	public, err := SpoofViewer(SpoofPublic)
	if err != nil {
		t.Fatalf("SpoofViewer(public): %v", err)
	}
	if public != (ViewerContext{}) {
		t.Errorf("public spoof = %+v, want anonymous", public)
	}

	// There is no admin or author spoof: those viewers see everything
	// already, so the level is rejected.
	if _, err := SpoofViewer(SpoofLevel("admin")); err == nil {
		t.Error("expected error for admin spoof level")
	}
}

// A spoofed context must be indistinguishable from a real one so the
// resolver treats previews exactly like real requests.
func TestSpoofedContextShape(t *testing.T) {
	spoofed, err := SpoofViewer(SpoofMember)
	if err != nil {
		t.Fatal(err)
	}
	real := ResolveViewer(Identity{UserID: "u-2", LoggedIn: true}, "u-1")
	if spoofed != real {
		t.Errorf("spoofed member context %+v differs from real member context %+v", spoofed, real)
	}
}
