package reconcile

import "testing"

func TestNormalizeCapacity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "TBD"},
		{"tbd", "TBD"},
		{"TBD", "TBD"},
		{"To Be Determined", "TBD"},
		{"to be determined (tbd)", "TBD"},
		{"TBD (to be determined)", "TBD"},
		{"Unknown", "TBD"},
		{"  unknown  ", "TBD"},
		{"High", "High"},
		{"$1M+", "$1M+"},
	}
	for _, tt := range tests {
		if got := NormalizeCapacity(tt.in); got != tt.want {
			t.Errorf("NormalizeCapacity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeExternalID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.0", "1234"},
		{"1234", "1234"},
		{"0042.0", "42"},
		{"-17.0", "-17"},
		{"1234.5", "1234.5"},
		{"A-1234", "A-1234"},
		{"", ""},
		{"1e20", "1e20"},
	}
	for _, tt := range tests {
		if got := normalizeExternalID(tt.in); got != tt.want {
			t.Errorf("normalizeExternalID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Ada  ", "Ada"},
		{"nan", ""},
		{"NaN", ""},
		{" NAN ", ""},
		{"Nandita", "Nandita"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanCell(tt.in); got != tt.want {
			t.Errorf("cleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCapNames(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	got := capNames(names)
	want := "a, b, c, d, e and 3 more"
	if got != want {
		t.Errorf("capNames(8) = %q, want %q", got, want)
	}

	short := capNames([]string{"a", "b"})
	if short != "a, b" {
		t.Errorf("capNames(2) = %q, want %q", short, "a, b")
	}

	if capNames(nil) != "" {
		t.Errorf("capNames(nil) = %q, want empty", capNames(nil))
	}
}
