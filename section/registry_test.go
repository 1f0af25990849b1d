package section

import "testing"

func TestRegistryOrdering(t *testing.T) {
	r := NewRegistry(nil)

	// Ties on Order keep load order.
	r.LoadSnapshot([]*SectionDefinition{
		{Key: "links", Order: 5},
		{Key: "profile", Order: 1},
		{Key: "business", Order: 5},
	})

	got := r.Sections()
	want := []string{"profile", "links", "business"}
	if len(got) != len(want) {
		t.Fatalf("Sections() len = %d, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s.Key != want[i] {
			t.Errorf("Sections()[%d] = %q, want %q", i, s.Key, want[i])
		}
	}
}

func TestRegistryReplaceNotMerge(t *testing.T) {
	r := NewRegistry(nil)

	r.LoadSnapshot([]*SectionDefinition{{Key: "profile", Order: 1}})
	r.LoadSnapshot([]*SectionDefinition{{Key: "business", Order: 1}})

	if r.Section("profile") != nil {
		t.Error("old snapshot survived a reload; LoadSnapshot must replace, not merge")
	}
	if r.Section("business") == nil {
		t.Error("new snapshot missing after reload")
	}
}

func TestRegistrySectionLookup(t *testing.T) {
	r := NewRegistry(nil)
	r.LoadSnapshot([]*SectionDefinition{{Key: "profile", Order: 1}})

	if s := r.Section("profile"); s == nil || s.Key != "profile" {
		t.Errorf("Section(profile) = %+v", s)
	}
	if s := r.Section("nope"); s != nil {
		t.Errorf("Section(nope) = %+v, want nil", s)
	}
}

func TestFieldOwners(t *testing.T) {
	r := NewRegistry(nil)
	r.LoadSnapshot([]*SectionDefinition{
		{Key: "profile", Order: 1, Fields: []FieldDefinition{contentField("profile", "bio")}},
		{Key: "business", Order: 2, Fields: []FieldDefinition{contentField("business", "company")}},
	})

	owners := r.FieldOwners()
	if owners[FieldPrefix("profile")+"bio"] != "profile" {
		t.Errorf("bio owner = %q", owners[FieldPrefix("profile")+"bio"])
	}
	if owners[FieldPrefix("business")+"company"] != "business" {
		t.Errorf("company owner = %q", owners[FieldPrefix("business")+"company"])
	}
	if len(owners) != 2 {
		t.Errorf("owners = %v, want 2 entries", owners)
	}
}
