package channel

import (
	"unicode/utf8"

	"github.com/artcava/XPoster/internal/domain"
)

const ellipsis = "…"

// ComposeText returns content followed by the firm, shortening the content
// so the result fits limit characters. The firm is kept whole when it fits.
func ComposeText(post *domain.Post, limit int) string {
	text := post.Text()
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	firmLen := utf8.RuneCountInString(post.Firm)
	room := limit - firmLen - utf8.RuneCountInString(ellipsis)
	if room <= 0 {
		return truncateRunes(text, limit)
	}
	return truncateRunes(post.Content, room) + ellipsis + post.Firm
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
