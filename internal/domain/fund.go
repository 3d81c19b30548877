package domain

// Fund is read-only reference data describing a subscribable fund.
// MinimumAmount is in COP minor units.
type Fund struct {
	ID            string
	Name          string
	Category      string
	MinimumAmount int64
}
