package chainlink

import (
	"math/big"
	"time"
)

// unixTime converts an on chain timestamp to a time value.
func unixTime(v *big.Int) time.Time {
	if !v.IsInt64() {
		return time.Time{}
	}
	return time.Unix(v.Int64(), 0).UTC()
}
