package payment

import (
	"fmt"
	"strings"
	"time"
)

const yearMonthLayout = "2006-01"

// YearMonth identifies a calendar month (a ledger column). The zero value is
// not a valid month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(yearMonthLayout, s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) IsZero() bool {
	return ym == YearMonth{}
}

// AddMonths advances the month by k (k may be negative), normalizing across
// year boundaries.
func (ym YearMonth) AddMonths(k int) YearMonth {
	t := time.Date(ym.Year, ym.Month+time.Month(k), 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (ym YearMonth) LastDay() time.Time {
	return ym.FirstDay().AddDate(0, 1, -1)
}

// ContainsDate reports whether the calendar date of t falls within the month.
// Only the date is considered, never the time of day.
func (ym YearMonth) ContainsDate(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ym.String() + `"`), nil
}

func (ym *YearMonth) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseYearMonth(s)
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}
