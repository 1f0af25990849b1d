// Package section defines administrator-configured profile sections and the
// in-memory registry that validates, orders, and serves them. A section is a
// named group of structured fields on a member page; its configuration
// arrives as a JSON document, passes the registry's integrity checks, and is
// then promoted wholesale into the live snapshot.
package section

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/memberdir/visibility"
)

// StoragePrefix is the namespace every content field's storage name lives
// under. The full per-field prefix also includes the owning section's key.
const StoragePrefix = "member_directory_"

// FieldPrefix returns the storage-name prefix for fields of the section
// identified by key.
func FieldPrefix(sectionKey string) string {
	return StoragePrefix + sectionKey + "_"
}

// EnabledFieldKey returns the exact key of a section's enabled-toggle system
// field.
func EnabledFieldKey(sectionKey string) string {
	return FieldPrefix(sectionKey) + "enabled"
}

// PrivacyModeFieldKey returns the exact key of a section's 4-state
// visibility selector system field.
func PrivacyModeFieldKey(sectionKey string) string {
	return FieldPrefix(sectionKey) + "privacy_mode"
}

// FieldType identifies the renderer a field uses.
type FieldType string

// Supported field types.
const (
	FieldText        FieldType = "text"
	FieldTextarea    FieldType = "textarea"
	FieldWysiwyg     FieldType = "wysiwyg"
	FieldNumber      FieldType = "number"
	FieldEmail       FieldType = "email"
	FieldURL         FieldType = "url"
	FieldImage       FieldType = "image"
	FieldGallery     FieldType = "gallery"
	FieldSelect      FieldType = "select"
	FieldCheckbox    FieldType = "checkbox"
	FieldRadio       FieldType = "radio"
	FieldTrueFalse   FieldType = "true_false"
	FieldTaxonomy    FieldType = "taxonomy"
	FieldButtonGroup FieldType = "button_group"
	FieldTab         FieldType = "tab"
)

// FieldDefinition describes one structured field within a section.
type FieldDefinition struct {
	Key        string         `json:"key"`
	Label      string         `json:"label"`
	Type       FieldType      `json:"type"`
	PMPDefault visibility.PMP `json:"pmp_default,omitempty"`
	Filterable bool           `json:"filterable,omitempty"`
	Taxonomy   string         `json:"taxonomy,omitempty"`
	Required   bool           `json:"required,omitempty"`
}

// SectionDefinition is one administrator-configured content section. Fields
// holds the full flat field list in storage order, system fields included;
// tab groupings are derived, never stored.
type SectionDefinition struct {
	Key          string            `json:"key"`
	Label        string            `json:"label"`
	Order        int               `json:"order"`
	CanBePrimary bool              `json:"can_be_primary"`
	PMPDefault   visibility.PMP    `json:"pmp_default"`
	Fields       []FieldDefinition `json:"field_group"`
}

// Field returns the field definition with the given key, or nil.
func (s *SectionDefinition) Field(key string) *FieldDefinition {
	for i := range s.Fields {
		if s.Fields[i].Key == key {
			return &s.Fields[i]
		}
	}
	return nil
}

// ContentFieldKeys returns the keys of the section's content fields: the
// flat list minus tab markers, system fields, and skip-listed names. These
// are the keys member data is stored under, and the unit the registry's
// collision and destructive-removal checks operate on.
func (s *SectionDefinition) ContentFieldKeys() []string {
	var keys []string
	for _, g := range s.FieldGroups() {
		for _, f := range g.Fields {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// docEnvelope mirrors SectionDefinition with pointer fields so a missing
// top-level key is distinguishable from a zero value.
type docEnvelope struct {
	Key          *string           `json:"key"`
	Label        *string           `json:"label"`
	Order        *int              `json:"order"`
	CanBePrimary *bool             `json:"can_be_primary"`
	PMPDefault   *visibility.PMP   `json:"pmp_default"`
	Fields       []FieldDefinition `json:"field_group"`
}

// requiredKeys lists the document's required top-level keys in reporting
// order.
var requiredKeys = []string{"key", "label", "order", "can_be_primary", "pmp_default", "field_group"}

func (e *docEnvelope) missingKey() string {
	present := map[string]bool{
		"key":            e.Key != nil,
		"label":          e.Label != nil,
		"order":          e.Order != nil,
		"can_be_primary": e.CanBePrimary != nil,
		"pmp_default":    e.PMPDefault != nil,
		"field_group":    e.Fields != nil,
	}
	for _, k := range requiredKeys {
		if !present[k] {
			return k
		}
	}
	return ""
}

func (e *docEnvelope) definition() *SectionDefinition {
	return &SectionDefinition{
		Key:          *e.Key,
		Label:        *e.Label,
		Order:        *e.Order,
		CanBePrimary: *e.CanBePrimary,
		PMPDefault:   *e.PMPDefault,
		Fields:       e.Fields,
	}
}

// ParseDocument decodes a section document without running registry-level
// integrity checks. Most callers want Registry.ValidateDocument instead;
// this exists for tooling that needs to inspect a document it already knows
// is live.
func ParseDocument(data []byte) (*SectionDefinition, error) {
	var env docEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse section document: %w", err)
	}
	if k := env.missingKey(); k != "" {
		return nil, fmt.Errorf("parse section document: missing required key %q", k)
	}
	return env.definition(), nil
}
