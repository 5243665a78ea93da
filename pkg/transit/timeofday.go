package transit

import (
	"fmt"
	"math"
	"strconv"
)

// hundredths of a minute in one day
const dayHundredths = 24 * 60 * 100

// TimeOfDay is a wall clock time relative to a service day. DayOffset is -1, 0 or +1.
type TimeOfDay struct {
	Hour      int
	Minute    int
	Second    int
	DayOffset int
}

// ParseOriginOffset reads the origin part of a trip id, a signed count of
// hundredths of a minute past midnight of the service day.
func ParseOriginOffset(text string) (TimeOfDay, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("trip origin %q: %w", text, err)
	}

	offset := 0
	if n < 0 {
		n += dayHundredths
		offset = -1
	} else if n >= dayHundredths {
		n -= dayHundredths
		offset = 1
	}
	if n < 0 || n >= dayHundredths {
		return TimeOfDay{}, fmt.Errorf("trip origin %q is more than a day out", text)
	}

	minutes := float64(n) / 100.0
	_, frac := math.Modf(minutes)

	return TimeOfDay{
		Hour:      int(minutes / 60),
		Minute:    int(math.Mod(minutes, 60)),
		Second:    int(frac * 60),
		DayOffset: offset,
	}, nil
}

// SinceLastMidnight counts seconds from the midnight before the service day.
func (t TimeOfDay) SinceLastMidnight() int {
	return (1+t.DayOffset)*86400 + t.Hour*3600 + t.Minute*60 + t.Second
}

// Before reports whether t happens earlier than other on the same service day.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.SinceLastMidnight() < other.SinceLastMidnight()
}

func (t TimeOfDay) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	switch {
	case t.DayOffset > 0:
		s += fmt.Sprintf(" +%d", t.DayOffset)
	case t.DayOffset < 0:
		s += fmt.Sprintf(" %d", t.DayOffset)
	}
	return s
}
