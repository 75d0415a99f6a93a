// Package domain holds the value types shared by the generators, the channel
// senders and the time-slot table.
package domain

import "time"

// Firm is the signature appended to every post at send time.
const Firm = "\n\n#XPoster generated #AI powered"

// Post is one piece of content ready for the gate and a channel sender.
type Post struct {
	Content string
	// Image is absent when nil or empty.
	Image []byte
	Firm  string
}

// NewPost returns a Post carrying the standard firm.
func NewPost(content string, image []byte) *Post {
	return &Post{Content: content, Image: image, Firm: Firm}
}

// HasImage reports whether the post carries image bytes.
func (p *Post) HasImage() bool {
	return len(p.Image) > 0
}

// Text is the content as transmitted: the body followed by the firm.
func (p *Post) Text() string {
	return p.Content + p.Firm
}

// FeedItem is one entry read from a syndication feed.
type FeedItem struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Link        string    `json:"link"`
	PublishDate time.Time `json:"publish_date"`
}

// HashtagRule maps a plain term to the hashtag that replaces it.
type HashtagRule struct {
	Term    string `yaml:"term"`
	Hashtag string `yaml:"hashtag"`
}
