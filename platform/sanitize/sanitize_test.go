package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := map[string]string{
		"Website <b>redesign</b>":              "Website redesign",
		"&lt;script&gt;alert(1)&lt;/script&gt;": "alert(1)",
		"  Logo   design  ":                     "Logo design",
		"Fish &amp; Chips":                      "Fish & Chips",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Fatalf("Text(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestTextPtrNil(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatalf("expected nil")
	}
}
