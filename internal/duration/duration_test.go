package duration

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"01:30", 90, false},
		{"24:00", 1440, false},
		{"7:05", 425, false},
		{" 02:15 ", 135, false},
		{"99:59", 5999, false},
		{"1:60", 0, true},
		{"abc", 0, true},
		{"1h 30min", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidFormat", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for m := 0; m <= 5999; m++ {
		got, err := Parse(Format(m))
		if err != nil {
			t.Fatalf("Parse(Format(%d)) error: %v", m, err)
		}
		if got != m {
			t.Fatalf("Parse(Format(%d)) = %d", m, got)
		}
	}
}

func TestParseHuman(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2 hr 5 min", 125},
		{"2h 5min", 125},
		{"1 hr", 60},
		{"45 min", 45},
		{"3 hours 10 minutes", 190},
		{"10h", 600},
	}
	for _, tt := range tests {
		got, err := ParseHuman(tt.in)
		if err != nil {
			t.Fatalf("ParseHuman(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHuman(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "soon", "12:30"} {
		if _, err := ParseHuman(bad); !errors.Is(err, ErrInvalidHuman) {
			t.Errorf("ParseHuman(%q) error = %v, want ErrInvalidHuman", bad, err)
		}
	}
}

func TestFormatHuman(t *testing.T) {
	if got := FormatHuman(125); got != "2h 5min" {
		t.Errorf("FormatHuman(125) = %q", got)
	}
	if got := Format(-5); got != "00:00" {
		t.Errorf("Format(-5) = %q", got)
	}
}
