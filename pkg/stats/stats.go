package stats

import "time"

// YearlySummary reports how much of a year's payment obligations are settled.
// An item counts as paid once it has at least one paid record in the year,
// regardless of how many monthly cells that covers.
type YearlySummary struct {
	Year       int
	PaidCount  int
	TotalCount int
	Percentage int
	PaidAmount int
}

// MonthlyTotal is the cash actually leaving in one calendar month. Prepayment
// lump sums land entirely in the month the origin payment was made.
type MonthlyTotal struct {
	Month time.Month
	Total int
}
