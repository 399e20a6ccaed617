package id

import (
	"encoding/json"
	"testing"
)

func TestNewAndParse(t *testing.T) {
	gid := NewGrantID()
	if gid.IsNil() {
		t.Fatal("new grant ID should not be nil")
	}
	if gid.Prefix() != PrefixGrant {
		t.Fatalf("expected prefix %q, got %q", PrefixGrant, gid.Prefix())
	}

	parsed, err := ParseGrantID(gid.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed.String() != gid.String() {
		t.Fatalf("round trip mismatch: %s != %s", parsed, gid)
	}
}

func TestParseWithPrefix_Mismatch(t *testing.T) {
	rid := NewRouteBindingID()
	if _, err := ParseGrantID(rid.String()); err == nil {
		t.Fatal("expected prefix mismatch error")
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []string{"", "not-a-typeid", "grant_", "_suffix"}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q): expected error", c)
		}
	}
}

func TestNilBehavior(t *testing.T) {
	var zero ID
	if !zero.IsNil() {
		t.Fatal("zero ID should be nil")
	}
	if zero.String() != "" {
		t.Fatalf("nil ID String should be empty, got %q", zero.String())
	}

	v, err := zero.Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("nil ID Value should be nil, got %v", v)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		ID ID `json:"id"`
	}

	in := wrapper{ID: NewCheckLogID()}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.ID.String() != in.ID.String() {
		t.Fatalf("JSON round trip mismatch: %s != %s", out.ID, in.ID)
	}
}

func TestScan(t *testing.T) {
	eid := NewHierarchyEdgeID()

	var scanned ID
	if err := scanned.Scan(eid.String()); err != nil {
		t.Fatal(err)
	}
	if scanned.String() != eid.String() {
		t.Fatalf("scan mismatch: %s != %s", scanned, eid)
	}

	var fromNil ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if !fromNil.IsNil() {
		t.Fatal("scanning nil should produce the Nil ID")
	}

	var fromInt ID
	if err := fromInt.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}
