package model

import "strings"

// DataMode selects which backend the client talks to.
type DataMode int

const (
	LiveMode DataMode = iota
	DemoMode
)

func (m DataMode) String() string {
	switch m {
	case LiveMode:
		return "live"
	case DemoMode:
		return "demo"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (DataMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "live":
		return LiveMode, true
	case "demo", "test":
		return DemoMode, true
	default:
		return 0, false
	}
}
