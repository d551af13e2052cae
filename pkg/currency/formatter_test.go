package currency

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{245.5, "EUR", "EUR 245.50"},
		{1234.5, "eur", "EUR 1,234.50"},
		{1500000, "USD", "USD 1,500,000.00"},
		{99.999, "GBP", "GBP 100.00"},
		{12, "", "12.00"},
		{12, "XYZW", "12.00"},
	}

	for _, tt := range tests {
		if got := Format(tt.amount, tt.code); got != tt.want {
			t.Errorf("Format(%v, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}
