package domain

import "testing"

func TestRegionEnumeration(t *testing.T) {
	if len(AllRegions) != 37 {
		t.Fatalf("regions = %d, want the 36 states plus the FCT", len(AllRegions))
	}

	for _, region := range AllRegions {
		if !region.IsValid() {
			t.Fatalf("enumerated region %q reported invalid", region)
		}
	}

	if Region("Atlantis").IsValid() {
		t.Fatal("unknown region reported valid")
	}
	if Region("").IsValid() {
		t.Fatal("empty region reported valid")
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"abcdef1234567890", "567890"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		r := Report{ID: tt.id}
		if got := r.ShortID(); got != tt.want {
			t.Fatalf("ShortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
