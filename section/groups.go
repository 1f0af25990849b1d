package section

import "strings"

// GeneralTab is the synthetic bucket for fields that precede the first tab
// marker in a section's field list.
const GeneralTab = "General"

// FieldGroup is one UI tab and the content fields rendered under it.
type FieldGroup struct {
	Tab    string
	Fields []FieldDefinition
}

// skipNames are host-platform fields (post title, core name fields, comment
// toggle) that ride along in exported field lists but are never rendered as
// directory content.
var skipNames = map[string]bool{
	"post_title":     true,
	"display_name":   true,
	"first_name":     true,
	"last_name":      true,
	"allow_comments": true,
}

// excludedFromContent reports whether f is control plumbing rather than
// renderable content: tab markers, the button-group visibility selector,
// enabled/privacy keys, and skip-listed host fields.
func (s *SectionDefinition) excludedFromContent(f FieldDefinition) bool {
	if f.Type == FieldTab || f.Type == FieldButtonGroup {
		return true
	}
	if strings.HasSuffix(f.Key, "_enabled") ||
		strings.HasSuffix(f.Key, "_privacy_mode") ||
		strings.HasSuffix(f.Key, "_privacy_level") {
		return true
	}
	if skipNames[f.Key] || skipNames[strings.TrimPrefix(f.Key, FieldPrefix(s.Key))] {
		return true
	}
	return false
}

// FieldGroups derives the section's tab groupings from its flat field list
// in a single pass over storage order. A tab marker opens a new group named
// by its label and closes the prior one; groups that end up with zero
// content fields are discarded. Fields before the first marker accumulate
// into the synthetic General group.
func (s *SectionDefinition) FieldGroups() []FieldGroup {
	var groups []FieldGroup
	current := FieldGroup{Tab: GeneralTab}

	flush := func() {
		if len(current.Fields) > 0 {
			groups = append(groups, current)
		}
	}

	for _, f := range s.Fields {
		if f.Type == FieldTab {
			flush()
			current = FieldGroup{Tab: f.Label}
			continue
		}
		if s.excludedFromContent(f) {
			continue
		}
		current.Fields = append(current.Fields, f)
	}
	flush()

	return groups
}

// AllFields returns the concatenation of every group's field list, the flat
// sequence visibility-resolution loops and field counts run over.
func (s *SectionDefinition) AllFields() []FieldDefinition {
	var fields []FieldDefinition
	for _, g := range s.FieldGroups() {
		fields = append(fields, g.Fields...)
	}
	return fields
}
