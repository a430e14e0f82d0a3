package guideline

import (
	"strings"
	"unicode/utf8"
)

type Platform string

const (
	Desktop Platform = "Desktop"
	Mobile  Platform = "Mobile"
	App     Platform = "App"
	Unknown Platform = "Unknown"
)

// Platforms lists the known platforms in display order.
var Platforms = []Platform{Desktop, Mobile, App}

// PlatformOf derives the platform from the trailing character of a citation
// code: D, M or A (any case). Everything else, including the empty string,
// is Unknown.
func PlatformOf(citationCode string) Platform {
	code := strings.TrimSpace(citationCode)
	if code == "" {
		return Unknown
	}
	last, _ := utf8.DecodeLastRuneInString(code)
	switch last {
	case 'D', 'd':
		return Desktop
	case 'M', 'm':
		return Mobile
	case 'A', 'a':
		return App
	default:
		return Unknown
	}
}

// ParsePlatform accepts a platform name in any case ("desktop", "Mobile") or
// its single-letter code. It reports false for anything else.
func ParsePlatform(s string) (Platform, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desktop", "d":
		return Desktop, true
	case "mobile", "m":
		return Mobile, true
	case "app", "a":
		return App, true
	default:
		return Unknown, false
	}
}

// GuidelineKey strips the trailing platform letter so that the Desktop,
// Mobile and App variants of one guideline share a key.
func GuidelineKey(citationCode string) string {
	code := strings.TrimSpace(citationCode)
	if code == "" {
		return ""
	}
	_, size := utf8.DecodeLastRuneInString(code)
	return code[:len(code)-size]
}
