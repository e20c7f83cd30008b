// Package classifier partitions scraped media into per-type buckets ahead of
// delivery.
package classifier

import "github.com/iconidentify/xcourier/internal/domain"

// Buckets groups one post's media by type. Items keep their input order
// within each bucket, and the buckets are disjoint.
type Buckets struct {
	Images     []domain.MediaItem
	Animations []domain.MediaItem
	Videos     []domain.MediaItem
}

// Classify partitions items by their type field. Items of unrecognized type
// land in no bucket.
func Classify(items []domain.MediaItem) Buckets {
	var b Buckets
	for _, item := range items {
		switch item.Type {
		case domain.MediaTypeImage:
			b.Images = append(b.Images, item)
		case domain.MediaTypeGIF:
			b.Animations = append(b.Animations, item)
		case domain.MediaTypeVideo:
			b.Videos = append(b.Videos, item)
		}
	}
	return b
}
