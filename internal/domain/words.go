package domain

import (
	"regexp"
	"strings"
	"sync"
)

// wordPatterns caches compiled whole-word matchers keyed by lowercase term.
var wordPatterns sync.Map

func wordPattern(term string) *regexp.Regexp {
	key := strings.ToLower(term)
	if re, ok := wordPatterns.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	// Group 2 is the term; group 1 is the boundary before it, which also
	// reports whether the term is already a hashtag.
	re := regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])(` + regexp.QuoteMeta(term) + `)(?:$|[^\p{L}\p{N}_])`)
	actual, _ := wordPatterns.LoadOrStore(key, re)
	return actual.(*regexp.Regexp)
}

// ContainsWord reports whether term occurs in text as a whole word,
// ignoring case.
func ContainsWord(text, term string) bool {
	if strings.TrimSpace(term) == "" {
		return false
	}
	return wordPattern(term).MatchString(text)
}

// ContainsAnyWord reports whether any of terms occurs in text as a whole word.
func ContainsAnyWord(text string, terms []string) bool {
	for _, term := range terms {
		if ContainsWord(text, term) {
			return true
		}
	}
	return false
}

// FindUntaggedWord returns the byte span of the first whole-word occurrence
// of term in text that is not already preceded by '#'.
func FindUntaggedWord(text, term string) (start, end int, ok bool) {
	if strings.TrimSpace(term) == "" {
		return 0, 0, false
	}
	re := wordPattern(term)
	offset := 0
	for offset <= len(text) {
		loc := re.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			return 0, 0, false
		}
		boundary := text[offset+loc[2] : offset+loc[3]]
		if boundary != "#" {
			return offset + loc[4], offset + loc[5], true
		}
		// Resume right after the tagged term so the next occurrence can match.
		offset += loc[5]
	}
	return 0, 0, false
}
