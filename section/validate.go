package section

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

// Validation failure classes. Structural failures mean the document itself
// is malformed; integrity failures mean a well-formed document breaks a
// registry-wide rule; destructive-change failures mean an update would drop
// field keys that carry stored member data.
const (
	KindStructural        ErrorKind = "structural"
	KindIntegrity         ErrorKind = "integrity"
	KindDestructiveChange ErrorKind = "destructive_change"
)

// ValidationError is a validation failure returned as data. It travels back
// to the operator as a specific human-readable reason, never as a panic
// across the registry boundary.
type ValidationError struct {
	Kind       ErrorKind
	SectionKey string
	FieldKeys  []string
	Reason     string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Reason
}

func structural(sectionKey, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: KindStructural, SectionKey: sectionKey, Reason: fmt.Sprintf(format, args...)}
}

func integrity(sectionKey string, fieldKeys []string, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: KindIntegrity, SectionKey: sectionKey, FieldKeys: fieldKeys, Reason: fmt.Sprintf(format, args...)}
}

var sectionKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateDocument runs the integrity gate a document must pass before it
// can become live. Checks run in order and short-circuit on the first
// failure: structural completeness, system-field presence, storage-name
// prefixing, and cross-document field-key collision against the currently
// live sections (excluding the document's own prior version, so overwriting
// yourself is legal). A nil error means the document is clean; the parsed
// definition is returned alongside for staging.
func (r *Registry) ValidateDocument(data []byte) (*SectionDefinition, *ValidationError) {
	return r.validate(data, false)
}

// ValidateUpload is ValidateDocument plus the destructive-removal guard for
// the single-document upload/update path: if the incoming version drops
// content field keys present in the current live version, the write is
// rejected with the dropped keys named. Removing a key would strand the
// member data stored under it, so deletion must be an explicit confirmed
// operation, never a side effect of an update.
func (r *Registry) ValidateUpload(data []byte) (*SectionDefinition, *ValidationError) {
	return r.validate(data, true)
}

func (r *Registry) validate(data []byte, guardRemovals bool) (*SectionDefinition, *ValidationError) {
	// Check 1: structural completeness.
	var env docEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, structural("", "section document is not valid JSON: %v", err)
	}
	if k := env.missingKey(); k != "" {
		return nil, structural("", "missing required key %q", k)
	}

	def := env.definition()
	if !sectionKeyPattern.MatchString(def.Key) {
		return nil, structural(def.Key, "section key %q must match %s", def.Key, sectionKeyPattern.String())
	}
	if !def.PMPDefault.IsExplicit() {
		return nil, structural(def.Key, "section %q: pmp_default %q must be public, member, or private", def.Key, def.PMPDefault)
	}

	// Check 2: both system fields, by exact derived key.
	for _, want := range []string{EnabledFieldKey(def.Key), PrivacyModeFieldKey(def.Key)} {
		if def.Field(want) == nil {
			return nil, integrity(def.Key, []string{want}, "section %q is missing required system field %q", def.Key, want)
		}
	}

	// Check 3: every non-tab field is stored under this section's prefix.
	// Catches field lists exported under another system's naming scheme.
	prefix := FieldPrefix(def.Key)
	for _, f := range def.Fields {
		if f.Type == FieldTab {
			continue
		}
		if skipNames[f.Key] {
			continue
		}
		if !strings.HasPrefix(f.Key, prefix) {
			return nil, integrity(def.Key, []string{f.Key}, "section %q: field %q does not use storage prefix %q", def.Key, f.Key, prefix)
		}
	}

	r.mu.RLock()
	owners := r.fieldOwnersLocked()
	live := r.sections[def.Key]
	r.mu.RUnlock()

	// Check 4: no field key already claimed by a different live section,
	// and no duplicates within the document itself.
	seen := make(map[string]bool)
	for _, fieldKey := range def.ContentFieldKeys() {
		if seen[fieldKey] {
			return nil, integrity(def.Key, []string{fieldKey}, "section %q declares field %q more than once", def.Key, fieldKey)
		}
		seen[fieldKey] = true
		if owner, claimed := owners[fieldKey]; claimed && owner != def.Key {
			return nil, integrity(def.Key, []string{fieldKey}, "field key %q already belongs to section %q", fieldKey, owner)
		}
	}

	// Check 5 (upload path): dropping a live content field key would make
	// the member data stored under it unreachable.
	if guardRemovals && live != nil {
		var dropped []string
		for _, fieldKey := range live.ContentFieldKeys() {
			if !seen[fieldKey] {
				dropped = append(dropped, fieldKey)
			}
		}
		if len(dropped) > 0 {
			sort.Strings(dropped)
			return nil, &ValidationError{
				Kind:       KindDestructiveChange,
				SectionKey: def.Key,
				FieldKeys:  dropped,
				Reason: fmt.Sprintf("section %q update would remove stored field keys %s; delete fields with an explicit confirmed operation instead",
					def.Key, strings.Join(dropped, ", ")),
			}
		}
	}

	return def, nil
}
