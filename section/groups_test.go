package section

import (
	"reflect"
	"testing"
)

func tabMarker(label string) FieldDefinition {
	return FieldDefinition{Key: label + "_tab", Label: label, Type: FieldTab}
}

func TestFieldGroups(t *testing.T) {
	text := contentField("profile", "bio")
	x := contentField("profile", "company")
	y := contentField("profile", "role")

	tests := []struct {
		name   string
		fields []FieldDefinition
		want   []FieldGroup
	}{
		{
			name:   "fields before a marker fall into General",
			fields: []FieldDefinition{text, tabMarker("Details"), x, y},
			want: []FieldGroup{
				{Tab: GeneralTab, Fields: []FieldDefinition{text}},
				{Tab: "Details", Fields: []FieldDefinition{x, y}},
			},
		},
		{
			name:   "lone marker yields no groups",
			fields: []FieldDefinition{tabMarker("X")},
			want:   nil,
		},
		{
			name:   "empty group between markers is discarded",
			fields: []FieldDefinition{tabMarker("Empty"), tabMarker("Real"), x},
			want: []FieldGroup{
				{Tab: "Real", Fields: []FieldDefinition{x}},
			},
		},
		{
			name: "control fields never surface as content",
			fields: []FieldDefinition{
				{Key: EnabledFieldKey("profile"), Type: FieldTrueFalse},
				{Key: PrivacyModeFieldKey("profile"), Type: FieldButtonGroup},
				{Key: FieldPrefix("profile") + "bio_privacy_level", Type: FieldSelect},
				{Key: "post_title", Type: FieldText},
				text,
			},
			want: []FieldGroup{
				{Tab: GeneralTab, Fields: []FieldDefinition{text}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SectionDefinition{Key: "profile", Fields: tt.fields}
			got := s.FieldGroups()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FieldGroups() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAllFields(t *testing.T) {
	s := &SectionDefinition{
		Key: "profile",
		Fields: []FieldDefinition{
			{Key: EnabledFieldKey("profile"), Type: FieldTrueFalse},
			{Key: PrivacyModeFieldKey("profile"), Type: FieldButtonGroup},
			contentField("profile", "bio"),
			tabMarker("Links"),
			contentField("profile", "website"),
			contentField("profile", "twitter"),
		},
	}

	got := s.AllFields()
	want := []string{
		FieldPrefix("profile") + "bio",
		FieldPrefix("profile") + "website",
		FieldPrefix("profile") + "twitter",
	}
	if len(got) != len(want) {
		t.Fatalf("AllFields() returned %d fields, want %d", len(got), len(want))
	}
	for i, f := range got {
		if f.Key != want[i] {
			t.Errorf("AllFields()[%d] = %q, want %q", i, f.Key, want[i])
		}
	}
}
