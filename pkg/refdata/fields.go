package refdata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/subpar/subpar/pkg/util"
)

// unquote returns the content of a JSON string, or the raw token for numbers and bools.
func unquote(data []byte) (string, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(data), nil
}

// YesNo decodes the T/TRUE/Y/YES and F/FALSE/N/NO strings used by the MTA feeds.
type YesNo bool

func (b *YesNo) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}

	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "T", "TRUE", "Y", "YES", "1":
		*b = true
	case "F", "FALSE", "N", "NO", "0", "", "NULL":
		*b = false
	default:
		return fmt.Errorf("unexpected bool string %q", s)
	}
	return nil
}

type QuotedInt int

func (n *QuotedInt) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}

	value, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("quoted int %q: %w", s, err)
	}
	*n = QuotedInt(value)
	return nil
}

type QuotedFloat float64

func (f *QuotedFloat) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("quoted float %q: %w", s, err)
	}
	*f = QuotedFloat(value)
	return nil
}

// ComplexID identifies a station complex.
type ComplexID int

func (c *ComplexID) UnmarshalJSON(data []byte) error {
	var n QuotedInt
	if err := n.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("complex id: %w", err)
	}
	*c = ComplexID(n)
	return nil
}

func ParseComplexID(s string) (ComplexID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("complex id %q: %w", s, err)
	}
	return ComplexID(n), nil
}

// delimited decodes a JSON string holding a list joined by separator.
func delimited(data []byte, separator string) ([]string, error) {
	s, err := unquote(data)
	if err != nil {
		return nil, err
	}
	if s == "null" {
		return []string{}, nil
	}
	return util.SplitList(s, separator), nil
}

// SlashList is a "/"-joined list, e.g. "A/C/E".
type SlashList []string

func (l *SlashList) UnmarshalJSON(data []byte) error {
	items, err := delimited(data, "/")
	*l = items
	return err
}

// SpaceList is a " "-joined list, e.g. "N Q R W".
type SpaceList []string

func (l *SpaceList) UnmarshalJSON(data []byte) error {
	items, err := delimited(data, " ")
	*l = items
	return err
}

// SemicolonList is a ";"-joined list, e.g. "L06; A27". Items are trimmed.
type SemicolonList []string

func (l *SemicolonList) UnmarshalJSON(data []byte) error {
	items, err := delimited(data, ";")
	*l = items
	return err
}

var nonSubwayTrains = []string{"LIRR", "METRO-NORTH"}

// TrainList is a "/"-joined route list with commuter rail removed.
type TrainList []string

func (l *TrainList) UnmarshalJSON(data []byte) error {
	items, err := delimited(data, "/")
	if err != nil {
		return err
	}

	util.InPlaceFilter(&items, func(train string) bool {
		for _, other := range nonSubwayTrains {
			if strings.EqualFold(train, other) {
				return false
			}
		}
		return true
	})

	*l = items
	return nil
}

type AdaStatus int

const (
	AdaNo AdaStatus = iota
	AdaFull
	AdaPartial
)

func (a AdaStatus) String() string {
	switch a {
	case AdaFull:
		return "Full"
	case AdaPartial:
		return "Partial"
	}
	return "No"
}

func (a AdaStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *AdaStatus) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}

	switch s {
	case "0", "No":
		*a = AdaNo
	case "1", "Full":
		*a = AdaFull
	case "2", "Partial":
		*a = AdaPartial
	default:
		return fmt.Errorf("ADA status %q out of bounds", s)
	}
	return nil
}

const outageTimeLayout = "01/02/2006 03:04:05 PM"

var newYork = loadNewYork()

func loadNewYork() *time.Location {
	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return location
}

// OutageTime is a New York local timestamp as written by the outage feed.
type OutageTime struct {
	time.Time
}

func (t *OutageTime) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.ParseInLocation(outageTimeLayout, s, newYork)
	if err != nil {
		// RFC3339 is what MarshalJSON writes, e.g. when read back from the cache
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("outage time %q: %w", s, err)
		}
	}
	t.Time = parsed
	return nil
}
