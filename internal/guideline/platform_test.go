package guideline

import "testing"

func TestPlatformOf(t *testing.T) {
	tests := []struct {
		code string
		want Platform
	}{
		{"#289D", Desktop},
		{"#289d", Desktop},
		{" #12M ", Mobile},
		{"#12m", Mobile},
		{"#7A", App},
		{"#7a", App},
		{"#7X", Unknown},
		{"", Unknown},
		{"   ", Unknown},
		{"D#12", Unknown},
	}
	for _, tt := range tests {
		if got := PlatformOf(tt.code); got != tt.want {
			t.Errorf("PlatformOf(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	for _, s := range []string{"desktop", "Desktop", "D", "d"} {
		if p, ok := ParsePlatform(s); !ok || p != Desktop {
			t.Errorf("ParsePlatform(%q) = %q, %v", s, p, ok)
		}
	}
	if _, ok := ParsePlatform("tablet"); ok {
		t.Error("ParsePlatform(tablet) should fail")
	}
}

func TestGuidelineKey(t *testing.T) {
	if got := GuidelineKey("#289D"); got != "#289" {
		t.Errorf("GuidelineKey = %q", got)
	}
	if got := GuidelineKey(""); got != "" {
		t.Errorf("GuidelineKey(empty) = %q", got)
	}
}
