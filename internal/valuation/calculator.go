package valuation

const (
	lowFactor  = 0.8
	highFactor = 1.2
)

// Range is the low/mid/high valuation estimate.
type Range struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// ComputeRange returns mid = adjustedEBITDA * multiple with a ±20% spread.
// Negative earnings are passed through unclamped.
func ComputeRange(adjustedEBITDA, multiple float64) Range {
	mid := adjustedEBITDA * multiple
	return Range{
		Low:  mid * lowFactor,
		Mid:  mid,
		High: mid * highFactor,
	}
}
