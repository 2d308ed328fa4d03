package format

import (
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		value float64
		want  string
	}{
		{name: "zero", value: 0, want: "₺0"},
		{name: "below thousand", value: 800, want: "₺800"},
		{name: "thousand", value: 1000, want: "₺1.000"},
		{name: "half rounds up", value: 1234.5, want: "₺1.235"},
		{name: "rounds down", value: 1234.4, want: "₺1.234"},
		{name: "millions", value: 2500000, want: "₺2.500.000"},
		{name: "negative", value: -1500, want: "-₺1.500"},
		{name: "nan", value: math.NaN(), want: "₺0"},
	}

	for _, tt := range testCases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Currency(tt.value); got != tt.want {
				t.Fatalf("Currency(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestRange(t *testing.T) {
	t.Parallel()

	if got := Range(800, 1200); got != "₺800 - ₺1.200" {
		t.Fatalf("Range() = %q", got)
	}
}
