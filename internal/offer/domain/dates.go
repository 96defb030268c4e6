package domain

import (
	"errors"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var errUnparseableDate = errors.New("unparseable date")

// ParseDate accepts RFC3339, RFC3339 without a zone (read as UTC), or YYYY-MM-DD.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errUnparseableDate
}
