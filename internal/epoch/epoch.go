// Package epoch maps renderer cutoffs (epoch seconds) to calendar dates for display.
package epoch

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Cutoff is a point in simulated time, in epoch seconds.
// The zero value is Unset.
type Cutoff struct {
	Seconds int64
	Valid   bool
}

// Unset means no cutoff has been reported yet.
var Unset = Cutoff{}

// At returns a valid cutoff for the given epoch seconds.
func At(seconds int64) Cutoff {
	return Cutoff{Seconds: seconds, Valid: true}
}

// Time returns the instant of the cutoff in loc (time.Local when nil).
func (c Cutoff) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(c.Seconds, 0).In(loc)
}

// Date derives the calendar date of the cutoff in loc.
// Returns false for an unset cutoff.
func (c Cutoff) Date(loc *time.Location) (Date, bool) {
	if !c.Valid {
		return Date{}, false
	}
	y, m, d := c.Time(loc).Date()
	return Date{Year: y, Month: m, Day: d}, true
}

func (c Cutoff) String() string {
	if !c.Valid {
		return "unset"
	}
	return fmt.Sprintf("%d", c.Seconds)
}

// Date is a local calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Label formats the date as "Mar 3rd, 2021".
func (d Date) Label() string {
	return fmt.Sprintf("%s %s, %d", d.Month.String()[:3], humanize.Ordinal(d.Day), d.Year)
}

// Label returns the display label for c in loc, or "" when unset.
func Label(c Cutoff, loc *time.Location) string {
	d, ok := c.Date(loc)
	if !ok {
		return ""
	}
	return d.Label()
}
