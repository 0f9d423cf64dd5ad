package domain

import "testing"

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name     string
		quantity int64
		critical int64
		excess   int64
		want     StockStatus
	}{
		{"depleted at zero", 0, 3, 0, StockStatusDepleted},
		{"depleted below zero", -1, 3, 0, StockStatusDepleted},
		{"low at critical threshold", 3, 3, 0, StockStatusLow},
		{"low below critical threshold", 2, 3, 0, StockStatusLow},
		{"sufficient above critical", 4, 3, 0, StockStatusSufficient},
		{"sufficient when excess disabled", 1000, 3, 0, StockStatusSufficient},
		{"excess at threshold", 100, 3, 100, StockStatusExcess},
		{"excess above threshold", 150, 3, 100, StockStatusExcess},
		{"sufficient below excess threshold", 99, 3, 100, StockStatusSufficient},
		{"depleted wins over low", 0, 0, 0, StockStatusDepleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StatusFor(tc.quantity, tc.critical, tc.excess)
			if got != tc.want {
				t.Fatalf("StatusFor(%d, %d, %d) = %s, want %s",
					tc.quantity, tc.critical, tc.excess, got, tc.want)
			}
		})
	}
}
