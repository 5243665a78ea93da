package transit

import (
	"fmt"
	"time"
)

// Date is a calendar service day with no time zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate reads the GTFS YYYYMMDD form.
func ParseDate(text string) (Date, error) {
	t, err := time.Parse("20060102", text)
	if err != nil {
		return Date{}, fmt.Errorf("start date %q: %w", text, err)
	}
	return DateOf(t), nil
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Midnight().AddDate(0, 0, n))
}

// Midnight is the start of the day in UTC.
func (d Date) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// At composes the day with a time of day, moving whole days first.
func (d Date) At(t TimeOfDay) time.Time {
	day := d.AddDays(t.DayOffset)
	return time.Date(day.Year, day.Month, day.Day, t.Hour, t.Minute, t.Second, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
