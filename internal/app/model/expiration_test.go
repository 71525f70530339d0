package model

import "testing"

func TestParseExpirationOption(t *testing.T) {
	for _, opt := range ExpirationOptions() {
		got, err := ParseExpirationOption(opt.String())
		if err != nil {
			t.Fatalf("ParseExpirationOption(%q) returned error: %v", opt, err)
		}
		if got != opt {
			t.Errorf("ParseExpirationOption(%q) = %q", opt, got)
		}
	}

	for _, bad := range []string{"", "Never", "30days", "custom "} {
		if _, err := ParseExpirationOption(bad); err == nil {
			t.Errorf("ParseExpirationOption(%q) expected error", bad)
		}
	}
}

func TestExpirationOption_RequiresDate(t *testing.T) {
	for _, opt := range ExpirationOptions() {
		want := opt == ExpirationCustom
		if opt.RequiresDate() != want {
			t.Errorf("%s.RequiresDate() = %v, expected %v", opt, !want, want)
		}
	}
}
