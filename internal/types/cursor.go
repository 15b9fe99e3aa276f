package types

import (
	"fmt"
	"time"
)

// MonthCursor is the calendar month currently being viewed.
//
// Month0 is zero-based, 0 is January and 11 is December.
type MonthCursor struct {
	Year   int `json:"year" example:"2024"`
	Month0 int `json:"month0" example:"11"`
}

// CursorOf returns the cursor for a Month.
func CursorOf(m Month) MonthCursor {
	t := time.Time(m)
	return MonthCursor{Year: t.Year(), Month0: int(t.Month()) - 1}
}

// CursorAt returns the cursor for the month t falls in.
func CursorAt(t time.Time) MonthCursor {
	return MonthCursor{Year: t.Year(), Month0: int(t.Month()) - 1}
}

// Month returns the Month the cursor points to.
func (c MonthCursor) Month() Month {
	return NewMonth(c.Year, time.Month(c.Month0+1))
}

// String returns the cursor formatted as YYYY-MM.
func (c MonthCursor) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, c.Month0+1)
}

// Next returns the cursor for the following month.
func (c MonthCursor) Next() MonthCursor {
	if c.Month0 == 11 {
		return MonthCursor{Year: c.Year + 1, Month0: 0}
	}
	return MonthCursor{Year: c.Year, Month0: c.Month0 + 1}
}

// Previous returns the cursor for the month before.
func (c MonthCursor) Previous() MonthCursor {
	if c.Month0 == 0 {
		return MonthCursor{Year: c.Year - 1, Month0: 11}
	}
	return MonthCursor{Year: c.Year, Month0: c.Month0 - 1}
}

// CanAdvance reports whether the cursor may move to the next month.
//
// With a nil bound, it always can. Otherwise, the first day of the
// cursor's month must be before the first day of the month that is
// maxMonthsAhead months after today.
func (c MonthCursor) CanAdvance(today time.Time, maxMonthsAhead *int) bool {
	if maxMonthsAhead == nil {
		return true
	}

	limit := MonthOf(today).AddDate(0, *maxMonthsAhead)
	return c.Month().Before(limit)
}

// NextWithin returns the next month if the bound allows it,
// and the unchanged cursor otherwise.
func (c MonthCursor) NextWithin(today time.Time, maxMonthsAhead *int) MonthCursor {
	if !c.CanAdvance(today, maxMonthsAhead) {
		return c
	}
	return c.Next()
}

// DateRange returns the first and the last day of the month as ISO dates.
func (c MonthCursor) DateRange() (string, string) {
	m := c.Month()
	return m.FirstDay().Format(time.DateOnly), m.LastDay().Format(time.DateOnly)
}
