package enricher

import (
	"testing"
	"unicode/utf8"
)

func TestExtractMainTopic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "marker line",
			text: "Some context here.\nMAIN_TOPIC: Quantum Computing\nMore text.",
			want: "Quantum Computing",
		},
		{
			name: "marker with leading whitespace",
			text: "Context.\n   MAIN_TOPIC: Space Travel",
			want: "Space Travel",
		},
		{
			name: "marker with empty topic",
			text: "MAIN_TOPIC:",
			want: "",
		},
		{
			name: "no marker uses first three words",
			text: "The French Revolution began in 1789 and reshaped Europe.",
			want: "The French Revolution",
		},
		{
			name: "short text under three words",
			text: "Jazz history",
			want: "Jazz history",
		},
		{
			name: "empty input",
			text: "",
			want: "",
		},
		{
			name: "whitespace only",
			text: "  \n\t ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMainTopic(tt.text); got != tt.want {
				t.Errorf("ExtractMainTopic(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestHeuristicTopic_LongSingleWord(t *testing.T) {
	text := "Supercalifragilisticexpialidocious-and-then-some-more-characters"
	got := heuristicTopic(text)
	if len(got) > heuristicMaxChars {
		t.Errorf("heuristicTopic() returned %d chars, want <= %d", len(got), heuristicMaxChars)
	}
}

func TestHeuristicTopic_MultibyteText(t *testing.T) {
	// Two fields; byte-based truncation would cut the CJK text mid-rune.
	text := "Q量子コンピュータの歴史と発展について詳しく解説した長い文字列 補足"
	got := heuristicTopic(text)
	if !utf8.ValidString(got) {
		t.Errorf("heuristicTopic() produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n > heuristicMaxChars {
		t.Errorf("heuristicTopic() returned %d runes, want <= %d", n, heuristicMaxChars)
	}
}
