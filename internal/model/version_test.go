package model

import "testing"

func TestBumpVersion(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1.0", "1.1"},
		{"1.1", "1.2"},
		{"1.9", "2.0"},
		{"2.9", "3.0"},
		{"10.3", "10.4"},
		{" 1.0 ", "1.1"},
		{"", "1.0"},
		{"banana", "1.0"},
		{"1", "1.0"},
		{"1.x", "1.0"},
	}
	for _, c := range cases {
		if got := BumpVersion(c.in); got != c.want {
			t.Errorf("BumpVersion(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsValidVersion(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1.0", true},
		{"1.9", true},
		{"10.3", true},
		{" 1.0 ", true},
		{"", false},
		{"banana", false},
		{"1", false},
		{"1.x", false},
		{"1.10", false},
	}
	for _, c := range cases {
		if got := IsValidVersion(c.in); got != c.want {
			t.Errorf("IsValidVersion(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Shop", "shop"},
		{"shop", "shop"},
		{"  Online   Shop ", "online shop"},
		{"ONLINE SHOP", "online shop"},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSyncReportResolve(t *testing.T) {
	r := &SyncReport{Created: 2}
	r.Resolve()
	if r.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", r.Status)
	}

	r = &SyncReport{Created: 1, Errors: []RecordError{{RequirementID: "REQ-2"}}}
	r.Resolve()
	if r.Status != StatusPartial {
		t.Errorf("expected partial, got %s", r.Status)
	}

	r = &SyncReport{Errors: []RecordError{{RequirementID: "REQ-1"}}}
	r.Resolve()
	if r.Status != StatusFailed {
		t.Errorf("expected failed, got %s", r.Status)
	}
}
