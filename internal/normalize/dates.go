package normalize

import (
	"strings"
	"time"
)

// dateLayouts is the closed list of formats the supported surfaces render.
// A timestamp matching none of them is a FormatError; guessing a layout
// would silently mis-order day and month.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"Jan 2, 2006 3:04:05 PM",
	"Jan 2, 2006 15:04",
	"2 Jan 2006 15:04:05",
	"2006-01-02",
}

func parseDateTime(raw string) (Value, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return Timestamp(ts), nil
		}
	}
	return Value{}, &FormatError{Class: ClassDateTime, Raw: raw, Reason: "no known date layout matched"}
}

// parseExpiry canonicalizes expiry cells. Keyword expiries become lowercase
// tokens; "specified" expiries carry a datetime and canonicalize to its
// RFC3339 rendering so two surfaces agree regardless of display format.
func parseExpiry(raw string) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gtc", "good till cancelled", "good till canceled":
		return Text("gtc"), nil
	case "day", "today", "good till day":
		return Text("day"), nil
	}
	ts, err := parseDateTime(raw)
	if err == nil {
		t, _ := ts.Time()
		return Text(t.Format(time.RFC3339)), nil
	}
	return Value{}, &FormatError{Class: ClassExpiry, Raw: raw, Reason: "neither expiry keyword nor datetime"}
}
