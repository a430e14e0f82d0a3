package richtext

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Use a   clear label. ", "Use a clear label."},
		{"paragraphs", "<p>First point.</p><p>Second <b>bold</b> point.</p>", "First point.\nSecond bold point."},
		{"line breaks", "one<br>two<br/>three", "one\ntwo\nthree"},
		{"scripts dropped", "<div>keep</div><script>alert(1)</script><style>p{}</style>", "keep"},
		{"list", "<ul><li>a</li><li>b</li></ul>", "a\nb"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLinks(t *testing.T) {
	got := Links(`<p>See <a href="https://a.example/pin">pin</a> and <a href=" https://b.example ">b</a><a>none</a></p>`)
	if diff := cmp.Diff([]string{"https://a.example/pin", "https://b.example"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if Links("no markup") != nil {
		t.Error("plain text has no links")
	}
}
