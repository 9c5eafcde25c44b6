package royalty

import (
	"testing"

	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

func TestPayout(t *testing.T) {
	cases := map[string]struct {
		amount  int64
		bps     int32
		want    int64
		wantErr *errors.Error
	}{
		"platform fee of a big payment": {
			amount: 100000000,
			bps:    250,
			want:   2500000,
		},
		"fraction is dropped": {
			amount: 999,
			bps:    250,
			want:   24,
		},
		"zero amount": {
			amount: 0,
			bps:    250,
			want:   0,
		},
		"zero percentage": {
			amount: 100000000,
			bps:    0,
			want:   0,
		},
		"whole percentage": {
			amount: 12345,
			bps:    10000,
			want:   12345,
		},
		"amount too small for the percentage": {
			amount: 3,
			bps:    250,
			want:   0,
		},
		"maximum amount does not overflow": {
			amount: coin.MaxInt,
			bps:    10000,
			want:   coin.MaxInt,
		},
		"negative amount": {
			amount:  -1,
			bps:     250,
			wantErr: errors.ErrAmount,
		},
		"amount above the coin range": {
			amount:  coin.MaxInt + 1,
			bps:     250,
			wantErr: errors.ErrAmount,
		},
		"negative percentage": {
			amount:  100,
			bps:     -1,
			wantErr: ErrPercentage,
		},
		"percentage above the whole": {
			amount:  100,
			bps:     10001,
			wantErr: ErrPercentage,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := Payout(tc.amount, tc.bps)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.wantErr, err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

// The sum of all payouts must never exceed the distributed amount and the
// amount kept back must be less than the number of collaborators.
func TestPayoutResidueBound(t *testing.T) {
	splits := map[string][]int32{
		"equal thirds":  {3333, 3333, 3334},
		"uneven":        {4000, 3500, 2500},
		"single":        {10000},
		"many small":    {1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000},
		"tiny and huge": {1, 1, 9998},
	}
	amounts := []int64{1, 3, 99, 101, 10007, 97500000}

	for testName, split := range splits {
		t.Run(testName, func(t *testing.T) {
			for _, amount := range amounts {
				var paid int64
				for _, bps := range split {
					p, err := Payout(amount, bps)
					if err != nil {
						t.Fatalf("payout of %d at %d bps: %s", amount, bps, err)
					}
					paid += p
				}
				residue := amount - paid
				if residue < 0 {
					t.Fatalf("amount %d: paid out %d more than available", amount, -residue)
				}
				if residue > int64(len(split)-1) {
					t.Fatalf("amount %d: residue %d exceeds %d", amount, residue, len(split)-1)
				}
			}
		})
	}
}
