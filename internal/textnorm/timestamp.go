package textnorm

import (
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/ticket-tools/internal/domain"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveTimestamp picks the first usable time from the email date, the
// generic timestamp, the creation date string and the record creation time.
// When none is usable it returns now() and fallback=true.
func ResolveTimestamp(props map[string]*string, recordCreatedAt time.Time, now func() time.Time) (ts time.Time, fallback bool) {
	if t, ok := parseMillis(props[domain.PropEmailDate]); ok {
		return t, false
	}
	if t, ok := parseMillis(props[domain.PropTimestamp]); ok {
		return t, false
	}
	if t, ok := parseDate(props[domain.PropRecordCreateAt]); ok {
		return t, false
	}
	if !recordCreatedAt.IsZero() {
		return recordCreatedAt.UTC(), false
	}
	return now().UTC(), true
}

// parseMillis accepts epoch milliseconds. The vendor sometimes serializes
// timestamp fields as ISO strings, which are accepted as well.
func parseMillis(v *string) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(*v)
	if raw == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return parseDate(v)
}

func parseDate(v *string) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(*v)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
