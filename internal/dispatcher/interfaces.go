package dispatcher

import (
	"context"
	"os"

	"github.com/iconidentify/xcourier/internal/domain"
)

// AlbumItem is one entry of a grouped media send.
type AlbumItem struct {
	URL     string
	Caption string
}

// Sink is the messaging surface media and text replies are delivered to.
type Sink interface {
	// SendText sends a plain text reply and returns a reference to the
	// sent message so it can be deleted later.
	SendText(ctx context.Context, chatID int64, replyTo int, text string) (domain.MessageRef, error)

	// SendMediaGroup sends the items as one grouped album.
	SendMediaGroup(ctx context.Context, chatID int64, replyTo int, items []AlbumItem) error

	// SendAnimation sends one animation by direct URL.
	SendAnimation(ctx context.Context, chatID int64, replyTo int, url, caption string) error

	// SendVideoURL sends one video by direct URL; the platform fetches it.
	SendVideoURL(ctx context.Context, chatID int64, replyTo int, url, caption string) error

	// SendVideoFile uploads a local video file as a streamable attachment.
	SendVideoFile(ctx context.Context, chatID int64, replyTo int, file *os.File, caption string) error

	// DeleteMessage removes a previously sent message.
	DeleteMessage(ctx context.Context, ref domain.MessageRef) error
}

// Recorder counts successfully delivered media items.
type Recorder interface {
	AddMediaDownloaded(n int)
}
