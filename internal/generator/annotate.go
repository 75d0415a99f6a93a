package generator

import (
	"strings"

	"github.com/artcava/XPoster/internal/domain"
)

// Annotate replaces, for each rule, the first whole-word occurrence of the
// term with its hashtag. Occurrences already written as hashtags are left
// alone, and later occurrences are untouched.
func Annotate(text string, rules []domain.HashtagRule) string {
	for _, rule := range rules {
		if strings.TrimSpace(rule.Term) == "" || rule.Hashtag == "" {
			continue
		}
		start, end, ok := domain.FindUntaggedWord(text, rule.Term)
		if !ok {
			continue
		}
		text = text[:start] + rule.Hashtag + text[end:]
	}
	return text
}

// Keywords returns the rule terms, used to filter feed titles.
func Keywords(rules []domain.HashtagRule) []string {
	out := make([]string, 0, len(rules))
	for _, rule := range rules {
		if strings.TrimSpace(rule.Term) != "" {
			out = append(out, rule.Term)
		}
	}
	return out
}
