package topics

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// CountMentions returns the number of case-insensitive whole-word
// occurrences of topic in text. The topic is matched literally.
func CountMentions(text string, topic domain.Topic) int {
	t := strings.TrimSpace(string(topic))
	if t == "" || text == "" {
		return 0
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(t) + `\b`)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}
