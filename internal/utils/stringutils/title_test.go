package stringutils

import (
	"strings"
	"testing"
)

func TestSanitizeTitleContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "plain text unchanged",
			content: "explain recursion to me",
			want:    "explain recursion to me",
		},
		{
			name:    "strips urls",
			content: "check https://example.com/docs for details",
			want:    "check for details",
		},
		{
			name:    "unwraps markdown links",
			content: "read [the guide](https://example.com) first",
			want:    "read the guide first",
		},
		{
			name:    "strips emails",
			content: "mail me at someone@example.com please",
			want:    "mail me at please",
		},
		{
			name:    "collapses whitespace and trims punctuation",
			content: "  what   is   Go?  ",
			want:    "what is Go",
		},
		{
			name:    "only noise yields empty",
			content: "https://example.com",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTitleContent(tt.content); got != tt.want {
				t.Errorf("SanitizeTitleContent(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestTruncateTitle(t *testing.T) {
	long := strings.Repeat("word ", 30)

	got := TruncateTitle(long, 40)
	if len(got) > 40 {
		t.Errorf("TruncateTitle length = %d, want <= 40", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("TruncateTitle = %q, want ellipsis suffix", got)
	}

	short := "short title"
	if got := TruncateTitle(short, 40); got != short {
		t.Errorf("TruncateTitle(%q) = %q, want unchanged", short, got)
	}
}

func TestDeriveConversationTitle(t *testing.T) {
	if got := DeriveConversationTitle("   "); got != DefaultConversationTitle {
		t.Errorf("DeriveConversationTitle(blank) = %q, want %q", got, DefaultConversationTitle)
	}

	got := DeriveConversationTitle("explain recursion")
	if got != "explain recursion" {
		t.Errorf("DeriveConversationTitle = %q, want %q", got, "explain recursion")
	}

	long := strings.Repeat("recursion ", 20)
	got = DeriveConversationTitle(long)
	if len(got) > DefaultTitleMaxLen {
		t.Errorf("derived title length = %d, want <= %d", len(got), DefaultTitleMaxLen)
	}
}
