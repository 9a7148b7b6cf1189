package shared

import "time"

// WIB is western Indonesian time. The back office runs on it and the
// upstream API expects local datetimes converted through it, not a
// silent hour shift.
var WIB = time.FixedZone("WIB", 7*3600)

const localDatetimeLayout = "2006-01-02T15:04"

// ParseWIB parses a datetime input. Bare datetime-local values are
// interpreted in WIB; anything carrying an offset is taken as is.
func ParseWIB(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation(localDatetimeLayout, value, WIB)
}
