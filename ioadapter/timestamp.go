package ioadapter

import (
	"time"

	"github.com/relvacode/iso8601"
)

// timestampLayout renders microsecond-precision UTC timestamps in the
// canonical form used by every Arrow input and snapshot file. The audit log
// and final-state document carry the RFC 3339 timestamps produced by the
// desk package instead.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := iso8601.ParseString(s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
