package compose

import "testing"

func TestFmtUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4_200_000_000, "$4.2B"},
		{1_250_000_000_000, "$1,250.0B"},
		{35_000_000, "$35.0M"},
		{1_500, "$1.5K"},
		{999.5, "$999.50"},
		{0, "$0.00"},
	}
	for _, tt := range tests {
		if got := fmtUSD(tt.in); got != tt.want {
			t.Errorf("fmtUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCommaFixed(t *testing.T) {
	tests := []struct {
		in   float64
		prec int
		want string
	}{
		{1234567.891, 2, "1,234,567.89"},
		{-1234.5, 1, "-1,234.5"},
		{-0.001, 2, "0.00"},
		{12, 0, "12"},
	}
	for _, tt := range tests {
		if got := commaFixed(tt.in, tt.prec); got != tt.want {
			t.Errorf("commaFixed(%v, %d) = %q, want %q", tt.in, tt.prec, got, tt.want)
		}
	}
}

func TestFmtNumber(t *testing.T) {
	if got := fmtNumber(50000); got != "50,000" {
		t.Errorf("fmtNumber(50000) = %q, want %q", got, "50,000")
	}
	if got := fmtNumber(12.5); got != "12.50" {
		t.Errorf("fmtNumber(12.5) = %q, want %q", got, "12.50")
	}
}

func TestHumanizeParam(t *testing.T) {
	tests := map[string]string{
		"arpu":            "ARPU",
		"serviceable_pct": "Serviceable %",
		"churn_rate":      "Churn Rate",
	}
	for in, want := range tests {
		if got := humanizeParam(in); got != want {
			t.Errorf("humanizeParam(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormStage(t *testing.T) {
	for _, in := range []string{"Series-A", "series a", " SERIES_A "} {
		if got := normStage(in); got != "series_a" {
			t.Errorf("normStage(%q) = %q, want series_a", in, got)
		}
	}
}
