// pkg/types/datetime.go
package types

import (
	"fmt"
	"time"
)

// Epoch is the zero value for datetime columns.
var Epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// datetimeLayouts are the accepted ISO-8601 shapes, tried in order. The
// fractional-second digits are optional in the two date-and-time layouts.
var datetimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseDatetime parses an ISO-8601 extended timestamp. A bare date parses as
// midnight.
func ParseDatetime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime: %q", s)
}

// FormatDatetime renders t in ISO-8601 extended format.
func FormatDatetime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}
