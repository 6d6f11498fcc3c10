package risk

import "math"

// PositionSize converts a risk budget into a whole-share quantity.
// The budget is equity*riskFraction, spread over the per-share distance
// between entry and stop. The result never drops below minShares (values
// below 1 are treated as 1), which is also what a zero distance yields.
// Sizes beyond int range saturate at math.MaxInt.
func PositionSize(equity, riskFraction, entry, stop float64, minShares int) int {
	if minShares < 1 {
		minShares = 1
	}
	// Dollar risk per trade
	riskAmt := equity * riskFraction
	// Stop distance per share
	perShare := math.Abs(entry - stop)
	if perShare == 0 {
		return minShares
	}
	qty := math.Floor(riskAmt / perShare)
	if math.IsNaN(qty) || qty < float64(minShares) {
		return minShares
	}
	// float64(math.MaxInt) rounds up to 2^63, so int(qty) would wrap.
	if qty >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(qty)
}
