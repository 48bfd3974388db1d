package enricher

import "strings"

const topicMarker = "MAIN_TOPIC:"

const (
	heuristicWordCount = 3
	heuristicMaxChars  = 30
)

// ExtractMainTopic pulls a short topic label out of generated context text.
// The prompt asks the model to include a "MAIN_TOPIC:" marker line; when the
// model ignores the instruction we fall back to the first few words of the
// context. The heuristic is deliberately crude and can produce near-duplicate
// labels for the same subject.
func ExtractMainTopic(contextText string) string {
	for _, line := range strings.Split(contextText, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, topicMarker) {
			return strings.TrimSpace(strings.TrimPrefix(line, topicMarker))
		}
	}
	return heuristicTopic(contextText)
}

func heuristicTopic(contextText string) string {
	text := strings.TrimSpace(contextText)
	if text == "" {
		return ""
	}

	words := strings.Fields(text)
	if len(words) >= heuristicWordCount {
		return strings.Join(words[:heuristicWordCount], " ")
	}
	// Truncate on runes so multibyte text is never cut mid-character.
	if runes := []rune(text); len(runes) > heuristicMaxChars {
		return strings.TrimSpace(string(runes[:heuristicMaxChars]))
	}
	return text
}
