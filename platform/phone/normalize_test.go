package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name, in, region, want string
	}{
		{"national number", "(212) 736-5000", "US", "+12127365000"},
		{"already international", "+1 212 736 5000", "TT", "+12127365000"},
		{"garbage kept trimmed", "  call me  ", "TT", "call me"},
		{"empty", "   ", "TT", ""},
	}
	for _, tc := range cases {
		if got := NormalizeE164(tc.in, tc.region); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestNormalizePtrBlankIsNil(t *testing.T) {
	blank := " "
	if NormalizePtr(&blank, "TT") != nil {
		t.Fatalf("expected nil for blank input")
	}
	if NormalizePtr(nil, "TT") != nil {
		t.Fatalf("expected nil for nil input")
	}
}
