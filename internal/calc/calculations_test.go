package calc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimatedAmount(t *testing.T) {
	cases := []struct {
		name      string
		quantity  float64
		unitPrice float64
		want      float64
	}{
		{"typical order", 5000, 850, 4250000},
		{"zero quantity", 0, 850, 0},
		{"zero price", 5000, 0, 0},
		{"fractional price", 1200, 1.5, 1800},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, EstimatedAmount(tc.quantity, tc.unitPrice))
		})
	}
}

func TestDeliveredVolume(t *testing.T) {
	cases := []struct {
		name    string
		ordered float64
		missing float64
		want    float64
	}{
		{"partial shortage", 8000, 500, 7500},
		{"no shortage", 8000, 0, 8000},
		{"shortage exceeds order", 8000, 9000, 0},
		{"exact shortage", 8000, 8000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DeliveredVolume(tc.ordered, tc.missing))
		})
	}
}
