package httpx

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Query returns a trimmed query parameter, or fallback when absent.
func Query(values url.Values, key, fallback string) string {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return fallback
	}
	return v
}

// QueryList splits a comma-separated query parameter into trimmed,
// non-empty elements. Repeated parameters are concatenated.
func QueryList(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for part := range strings.SplitSeq(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// QueryBool interprets a query parameter as a boolean. Accepts "1", "t",
// "true", "yes", "on" as true; absence or anything else is false.
func QueryBool(values url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(values.Get(key))) {
	case "1", "t", "true", "yes", "on":
		return true
	}
	return false
}

// QueryTime parses an RFC 3339 query parameter. An absent parameter
// returns ok=false; a present but malformed value is an error so handlers
// can reject it instead of silently dropping the filter.
func QueryTime(values url.Values, key string) (time.Time, bool, error) {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", key, err)
	}
	return t, true, nil
}
