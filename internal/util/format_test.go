package util

import (
	"testing"
	"time"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{425.75, "$426"},
		{2297200.86, "$2,297,201"},
		{-5.5, "-$6"},
		{24.5, "$24"},
		{25.5, "$26"},
		{1234.5, "$1,234"},
		{-0.4, "$0"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(24.50/425.75, 1); got != "5.8%" {
		t.Errorf("FormatPercent margin = %q, want 5.8%%", got)
	}
	if got := FormatPercent(0.08, 2); got != "8.00%" {
		t.Errorf("FormatPercent = %q, want 8.00%%", got)
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(1234567); got != "1,234,567" {
		t.Errorf("FormatCount = %q", got)
	}
}

func TestFormatMonth(t *testing.T) {
	if got := FormatMonth(time.Date(2017, 3, 1, 0, 0, 0, 0, time.UTC)); got != "Mar 2017" {
		t.Errorf("FormatMonth = %q", got)
	}
}
