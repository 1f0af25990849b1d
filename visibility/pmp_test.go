package visibility

import (
	"encoding/json"
	"testing"
)

func TestPMPIsExplicit(t *testing.T) {
	explicit := []PMP{Public, Member, Private}
	for _, p := range explicit {
		if !p.IsExplicit() {
			t.Errorf("%q should be explicit", p)
		}
	}

	for _, p := range []PMP{Inherit, PMP(""), PMP("bogus"), PMP("PUBLIC")} {
		if p.IsExplicit() {
			t.Errorf("%q should not be explicit", p)
		}
	}
}

func TestPMPValid(t *testing.T) {
	for _, p := range []PMP{Public, Member, Private, Inherit} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if PMP("members_only").Valid() {
		t.Error("unknown value should not be valid")
	}
}

func TestPMPJSONRoundTrip(t *testing.T) {
	type doc struct {
		Default PMP `json:"pmp_default"`
	}

	data := []byte(`{"pmp_default":"member"}`)
	var d doc
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Default != Member {
		t.Errorf("got %q, want %q", d.Default, Member)
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"pmp_default":"member"}` {
		t.Errorf("marshal produced %s", out)
	}
}

func TestMustExplicit(t *testing.T) {
	if _, err := Public.MustExplicit(); err != nil {
		t.Errorf("Public.MustExplicit() errored: %v", err)
	}
	if _, err := Inherit.MustExplicit(); err == nil {
		t.Error("Inherit.MustExplicit() should error")
	}
}
