package timezones

import "strings"

// Search filters zones by a case-insensitive query and ranks the matches:
// exact match first, then name-segment prefixes (the part after the final
// slash), then full-identifier prefixes, then substring matches. An empty
// query returns the zones unfiltered. limit <= 0 means no limit.
func Search(zones []string, query string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return truncate(append([]string{}, zones...), limit)
	}

	var exact, segment, prefix, substring []string
	for _, zone := range zones {
		lower := strings.ToLower(zone)
		switch {
		case lower == query:
			exact = append(exact, zone)
		case segmentHasPrefix(lower, query):
			segment = append(segment, zone)
		case strings.HasPrefix(lower, query):
			prefix = append(prefix, zone)
		case strings.Contains(lower, query):
			substring = append(substring, zone)
		}
	}

	ranked := make([]string, 0, len(exact)+len(segment)+len(prefix)+len(substring))
	ranked = append(ranked, exact...)
	ranked = append(ranked, segment...)
	ranked = append(ranked, prefix...)
	ranked = append(ranked, substring...)
	return truncate(ranked, limit)
}

// segmentHasPrefix reports whether the zone's city segment starts with the
// query, e.g. "paris" against "Europe/Paris".
func segmentHasPrefix(lowerZone, query string) bool {
	idx := strings.LastIndexByte(lowerZone, '/')
	if idx < 0 {
		return false
	}
	return strings.HasPrefix(lowerZone[idx+1:], query)
}

func truncate(zones []string, limit int) []string {
	if limit > 0 && len(zones) > limit {
		return zones[:limit]
	}
	return zones
}
