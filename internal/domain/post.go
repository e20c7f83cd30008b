package domain

import "unicode/utf8"

// PostID is the numeric identifier of a post on X.com (1-20 digits).
type PostID string

// String returns the string representation of the PostID.
func (id PostID) String() string {
	return string(id)
}

// MediaType represents the type of media.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeGIF   MediaType = "gif"
)

// MediaItem is one piece of media attached to a post, as reported by the
// scraping API.
type MediaItem struct {
	Type MediaType `json:"type"`
	URL  string    `json:"url"`
}

// ScrapeResult holds the media list and body text of one scraped post.
// Text is always present, possibly empty.
type ScrapeResult struct {
	Media []MediaItem
	Text  string
}

// HasMedia returns true if the post contains any media.
func (r *ScrapeResult) HasMedia() bool {
	return len(r.Media) > 0
}

// HasVideo returns true if the post contains video or animated media.
func (r *ScrapeResult) HasVideo() bool {
	for _, m := range r.Media {
		if m.Type == MediaTypeVideo || m.Type == MediaTypeGIF {
			return true
		}
	}
	return false
}

// HasImages returns true if the post contains images.
func (r *ScrapeResult) HasImages() bool {
	for _, m := range r.Media {
		if m.Type == MediaTypeImage {
			return true
		}
	}
	return false
}

// DeliveryOutcome summarizes the handling of one post.
type DeliveryOutcome struct {
	MediaFound     bool
	MediaDelivered bool
}

// CaptionLimit is the longest caption the messaging platform accepts.
const CaptionLimit = 1024

// TruncateCaption trims text to CaptionLimit characters for use as a media
// caption. Text at or under the limit passes through unchanged.
func TruncateCaption(text string) string {
	if utf8.RuneCountInString(text) <= CaptionLimit {
		return text
	}
	return string([]rune(text)[:CaptionLimit])
}
