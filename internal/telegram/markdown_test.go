package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessagePrefersNewlines(t *testing.T) {
	text := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6)
	parts := SplitMessage(text, 10)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0] != "aaaaaa\n" || parts[1] != "bbbbbb" {
		t.Fatalf("unexpected split %q", parts)
	}
}

func TestSplitMessageCountsRunes(t *testing.T) {
	text := strings.Repeat("🥇", 15)
	parts := SplitMessage(text, 10)
	if len(parts) != 2 || len([]rune(parts[0])) != 10 {
		t.Fatalf("unexpected split %q", parts)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := EscapeMarkdown("a_b*c`d[e"); got != "a\\_b\\*c\\`d\\[e" {
		t.Fatalf("unexpected escape %q", got)
	}
}

func TestFixMarkdown(t *testing.T) {
	tests := map[string]string{
		"*bold":          "*bold*",
		"`code":          "`code`",
		"*ok* \\* star":  "*ok* \\* star",
		"`*inside code`": "`*inside code`",
	}
	for in, want := range tests {
		if got := FixMarkdown(in); got != want {
			t.Fatalf("FixMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}
