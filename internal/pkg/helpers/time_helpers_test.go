package helpers

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"08:40", "08:40", false},
		{" 08:40 ", "08:40", false},
		{"9:05", "09:05", false},
		{"23:59", "23:59", false},
		{"24:00", "", true},
		{"0840", "", true},
		{"", "", true},
		{"eight forty", "", true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.June || d.Day() != 1 {
		t.Errorf("ParseDate returned %v", d)
	}

	for _, bad := range []string{"06/01/2025", "2025-13-01", "yesterday", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestParseTimeRange(t *testing.T) {
	start, end, err := ParseTimeRange("08:40 ~ 10:40")
	if err != nil {
		t.Fatalf("ParseTimeRange: %v", err)
	}
	if start != "08:40" || end != "10:40" {
		t.Errorf("got (%q, %q)", start, end)
	}

	// The separator tolerates missing surrounding spaces.
	start, end, err = ParseTimeRange("9:00~11:00")
	if err != nil {
		t.Fatalf("ParseTimeRange compact form: %v", err)
	}
	if start != "09:00" || end != "11:00" {
		t.Errorf("got (%q, %q)", start, end)
	}

	for _, bad := range []string{"08:40", "08:40 ~ 10:40 ~ 12:40", "08:40 - 10:40", ""} {
		if _, _, err := ParseTimeRange(bad); err == nil {
			t.Errorf("ParseTimeRange(%q) should fail", bad)
		}
	}
}
