package transit

import "strings"

// StopId is a station ("101") or one of its platforms ("101N").
type StopId string

// IsPlatform reports whether the id carries a direction suffix.
func (s StopId) IsPlatform() bool {
	return strings.HasSuffix(string(s), "N") || strings.HasSuffix(string(s), "S")
}

// Parent strips the direction suffix, returning the station id.
func (s StopId) Parent() StopId {
	if s.IsPlatform() {
		return s[:len(s)-1]
	}
	return s
}
