// Package instant normalizes client supplied timestamps to UTC and renders
// them in the service's wire format.
package instant

import (
	"strings"
	"time"

	"github.com/okian/staffnote/internal/domain/payload"
)

// Field is the request field timestamps are read from.
const Field = "timestamp"

// Wire format: seconds precision, microseconds when non-zero, explicit UTC offset.
const (
	layoutSeconds = "2006-01-02T15:04:05"
	layoutMicros  = "2006-01-02T15:04:05.000000"
	utcSuffix     = "+00:00"
)

// Accepted input layouts, extended then basic format. Z07 takes a bare
// "+09" offset. Fractional seconds are accepted after the seconds field by
// time.Parse even when the layout omits them.
var layouts = []string{ //nolint:gochecknoglobals // static table
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04-0700",
	"2006-01-02T15:04Z07",
	"2006-01-02T15:04",
	"2006-01-02T15Z07:00",
	"2006-01-02T15-0700",
	"2006-01-02T15Z07",
	"2006-01-02T15",
	"2006-01-02",
	"20060102T150405Z07:00",
	"20060102T150405-0700",
	"20060102T150405Z07",
	"20060102T150405",
	"20060102T1504Z07:00",
	"20060102T1504-0700",
	"20060102T1504Z07",
	"20060102T1504",
	"20060102",
}

// Normalize returns now() in UTC when raw is nil, otherwise the parsed
// instant converted to UTC.
func Normalize(raw *string, now func() time.Time) (time.Time, error) {
	if raw == nil {
		return Truncate(now()), nil
	}
	return Parse(*raw)
}

// Parse reads an ISO-8601 date or date-time. Input without an offset is
// taken as UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Truncate(t), nil
		}
	}
	return time.Time{}, payload.Invalid(Field, "must be an ISO-8601 date-time")
}

// Truncate converts t to UTC at microsecond precision, the resolution the
// stores keep.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Format renders t as YYYY-MM-DDTHH:MM:SS[.ffffff]+00:00.
func Format(t time.Time) string {
	t = Truncate(t)
	if t.Nanosecond() == 0 {
		return t.Format(layoutSeconds) + utcSuffix
	}
	return t.Format(layoutMicros) + utcSuffix
}
