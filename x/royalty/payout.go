package royalty

import (
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

// wholeBps is the number of basis points that represent 100%.
const wholeBps = 10000

// Payout returns the part of the amount that a percentage expressed in
// basis points entitles to, rounded down.
//
// Arithmetic is integer only. The intermediate product is computed in
// uint64: amounts are bounded by coin.MaxInt (10^15-1), so even the
// maximum amount multiplied by 10000 basis points stays below 2^64.
func Payout(amount int64, percentageBps int32) (int64, error) {
	if amount < 0 || amount > coin.MaxInt {
		return 0, errors.Wrapf(errors.ErrAmount, "amount out of range: %d", amount)
	}
	if percentageBps < 0 || percentageBps > wholeBps {
		return 0, errors.Wrapf(ErrPercentage, "basis points out of range: %d", percentageBps)
	}
	return int64(uint64(amount) * uint64(percentageBps) / wholeBps), nil
}
