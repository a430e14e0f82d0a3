package guideline

import (
	"math"
	"strconv"
	"strings"
)

// ParseImpact coerces an Impact cell to a number. Blank, non-numeric and NaN
// cells report false; they never raise.
func ParseImpact(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseFlag coerces the spreadsheet's yes/no columns to a bool. Anything not
// recognised as truthy is false.
func ParseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "1.0", "yes", "y", "t", "x":
		return true
	default:
		return false
	}
}

// NormalizeImageURLs turns an Image URLs cell into a list of trimmed,
// non-empty URLs. The cell may be a single URL, a comma-joined string or a
// serialized list such as ['a', 'b'].
func NormalizeImageURLs(raw string) []string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var urls []string
	for _, part := range strings.Split(s, ",") {
		u := strings.Trim(strings.TrimSpace(part), `"'`)
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		urls = append(urls, u)
	}
	return urls
}
