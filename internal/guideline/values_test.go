package guideline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeImageURLs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"blank list", "[]", nil},
		{"single", " https://a.example/1.png ", []string{"https://a.example/1.png"}},
		{"comma joined", "https://a/1.png, https://a/2.png,,", []string{"https://a/1.png", "https://a/2.png"}},
		{"list repr", "['https://a/1.png', \"https://a/2.png\"]", []string{"https://a/1.png", "https://a/2.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, NormalizeImageURLs(tt.raw)); diff != "" {
				t.Errorf("NormalizeImageURLs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseImpact(t *testing.T) {
	if v, ok := ParseImpact(" -2.5 "); !ok || v != -2.5 {
		t.Errorf("ParseImpact(-2.5) = %v, %v", v, ok)
	}
	for _, raw := range []string{"", "high", "NaN", "inf"} {
		if _, ok := ParseImpact(raw); ok {
			t.Errorf("ParseImpact(%q) should be missing", raw)
		}
	}
}

func TestParseFlag(t *testing.T) {
	for _, raw := range []string{"TRUE", "yes", "1", "x"} {
		if !ParseFlag(raw) {
			t.Errorf("ParseFlag(%q) = false", raw)
		}
	}
	for _, raw := range []string{"", "false", "0", "no", "maybe"} {
		if ParseFlag(raw) {
			t.Errorf("ParseFlag(%q) = true", raw)
		}
	}
}

func TestColor(t *testing.T) {
	tests := map[string]string{
		"adhered_high":   "#769b37",
		" Violated_Low ": "#ea7a0d",
		"not_rated":      "rgba(255,255,255,0.3)",
		"":               "#FFFFFF",
		"bogus":          "#FFFFFF",
	}
	for raw, want := range tests {
		if got := Color(raw); got != want {
			t.Errorf("Color(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestJudgementGroupAndStatus(t *testing.T) {
	if got := ParseJudgement("").Group(); got != NotRated {
		t.Errorf("missing judgement group = %q", got)
	}
	if got := ParseJudgement("whatever").Group(); got != NotRated {
		t.Errorf("unknown judgement group = %q", got)
	}
	if got := ParseJudgement("Adhered_Low").Status(); got != "adhered" {
		t.Errorf("status = %q", got)
	}
	if got := NotApplicable.Status(); got != "" {
		t.Errorf("status = %q", got)
	}
}
