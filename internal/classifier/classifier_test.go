package classifier

import (
	"testing"

	"github.com/iconidentify/xcourier/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		items          []domain.MediaItem
		wantImages     []string
		wantAnimations []string
		wantVideos     []string
	}{
		{
			name: "mixed types keep input order per bucket",
			items: []domain.MediaItem{
				{Type: domain.MediaTypeVideo, URL: "v1"},
				{Type: domain.MediaTypeImage, URL: "i1"},
				{Type: domain.MediaTypeGIF, URL: "g1"},
				{Type: domain.MediaTypeImage, URL: "i2"},
				{Type: domain.MediaTypeVideo, URL: "v2"},
			},
			wantImages:     []string{"i1", "i2"},
			wantAnimations: []string{"g1"},
			wantVideos:     []string{"v1", "v2"},
		},
		{
			name: "images only",
			items: []domain.MediaItem{
				{Type: domain.MediaTypeImage, URL: "i1"},
				{Type: domain.MediaTypeImage, URL: "i2"},
			},
			wantImages: []string{"i1", "i2"},
		},
		{
			name: "unrecognized type lands nowhere",
			items: []domain.MediaItem{
				{Type: "audio", URL: "a1"},
				{Type: domain.MediaTypeImage, URL: "i1"},
			},
			wantImages: []string{"i1"},
		},
		{
			name:  "empty input yields empty buckets",
			items: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.items)

			checkBucket(t, "Images", got.Images, tt.wantImages)
			checkBucket(t, "Animations", got.Animations, tt.wantAnimations)
			checkBucket(t, "Videos", got.Videos, tt.wantVideos)
		})
	}
}

func checkBucket(t *testing.T, name string, got []domain.MediaItem, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Errorf("%s has %d items, want %d", name, len(got), len(want))
		return
	}
	for i, item := range got {
		if item.URL != want[i] {
			t.Errorf("%s[%d].URL = %q, want %q", name, i, item.URL, want[i])
		}
	}
}

func TestClassify_TotalPartition(t *testing.T) {
	items := []domain.MediaItem{
		{Type: domain.MediaTypeImage, URL: "i1"},
		{Type: domain.MediaTypeVideo, URL: "v1"},
		{Type: domain.MediaTypeGIF, URL: "g1"},
		{Type: domain.MediaTypeImage, URL: "i2"},
	}

	got := Classify(items)

	total := len(got.Images) + len(got.Animations) + len(got.Videos)
	if total != len(items) {
		t.Errorf("buckets hold %d items, want %d", total, len(items))
	}

	seen := make(map[string]int)
	for _, bucket := range [][]domain.MediaItem{got.Images, got.Animations, got.Videos} {
		for _, item := range bucket {
			seen[item.URL]++
		}
	}
	for url, count := range seen {
		if count != 1 {
			t.Errorf("item %q appears in %d buckets, want 1", url, count)
		}
	}
}
