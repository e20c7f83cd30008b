// Package dispatcher delivers scraped media to the messaging sink, picking a
// strategy per media type and, for videos, per measured size.
package dispatcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/iconidentify/xcourier/internal/classifier"
	"github.com/iconidentify/xcourier/internal/config"
	"github.com/iconidentify/xcourier/internal/domain"
	"github.com/iconidentify/xcourier/internal/downloader"
)

const uploadNotice = "Video is too large for direct download\nUsing upload method (this might take a bit longer)"

// Dispatcher executes the size and type appropriate delivery strategy for
// each media bucket of one post. One item failing never aborts the batch.
type Dispatcher struct {
	sink       Sink
	downloader downloader.Downloader
	recorder   Recorder
	cfg        config.DeliveryConfig
	logger     *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(sink Sink, dl downloader.Downloader, recorder Recorder, cfg config.DeliveryConfig, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sink:       sink,
		downloader: dl,
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger,
	}
}

// Dispatch delivers all media of one scraped post as replies to msg. It
// returns true iff at least one item was delivered. When a post carries both
// animations and videos only the animations are sent.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.IncomingMessage, result *domain.ScrapeResult) bool {
	buckets := classifier.Classify(result.Media)
	caption := domain.TruncateCaption(result.Text)

	bucketed := len(buckets.Images) + len(buckets.Animations) + len(buckets.Videos)
	if skipped := len(result.Media) - bucketed; skipped > 0 {
		d.logger.Warn("unsupported media types skipped", "chat_id", msg.ChatID, "count", skipped)
	}

	delivered := d.sendImages(ctx, msg, buckets.Images, caption)

	if len(buckets.Animations) > 0 {
		delivered += d.sendAnimations(ctx, msg, buckets.Animations, caption)
	} else if len(buckets.Videos) > 0 {
		delivered += d.sendVideos(ctx, msg, buckets.Videos, caption)
	}

	if delivered > 0 {
		d.recorder.AddMediaDownloaded(delivered)
	}

	return delivered > 0
}

// sendImages sends all images as one grouped album and returns how many it
// delivered. Only the first item of a group may carry the caption.
func (d *Dispatcher) sendImages(ctx context.Context, msg domain.IncomingMessage, images []domain.MediaItem, caption string) int {
	if len(images) == 0 {
		return 0
	}

	items := make([]AlbumItem, 0, len(images))
	for _, img := range images {
		items = append(items, AlbumItem{URL: d.bestImageURL(ctx, img.URL)})
	}
	items[0].Caption = caption

	if err := d.sink.SendMediaGroup(ctx, msg.ChatID, msg.MessageID, items); err != nil {
		d.logger.Error("send media group failed", "chat_id", msg.ChatID, "error", err)
		return 0
	}

	return len(items)
}

// bestImageURL rewrites the URL query to request original quality, keeping
// the rewrite only when the rewritten URL is reachable.
func (d *Dispatcher) bestImageURL(ctx context.Context, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = "format=jpg&name=orig"
	origURL := u.String()

	probe, err := d.downloader.Probe(ctx, origURL)
	if err != nil || !probe.Accessible {
		return rawURL
	}
	return origURL
}

func (d *Dispatcher) sendAnimations(ctx context.Context, msg domain.IncomingMessage, animations []domain.MediaItem, caption string) int {
	sent := 0
	for _, item := range animations {
		if err := d.sink.SendAnimation(ctx, msg.ChatID, msg.MessageID, item.URL, caption); err != nil {
			d.logger.Error("send animation failed", "chat_id", msg.ChatID, "url", item.URL, "error", err)
			continue
		}
		sent++
	}
	return sent
}

func (d *Dispatcher) sendVideos(ctx context.Context, msg domain.IncomingMessage, videos []domain.MediaItem, caption string) int {
	sent := 0
	for _, item := range videos {
		if d.sendVideo(ctx, msg, item.URL, caption) {
			sent++
		}
	}
	return sent
}

// sendVideo delivers one video by the tier its measured size selects: direct
// URL up to DownloadLimit, buffered upload up to UploadLimit, link-only text
// beyond that. Both boundaries are inclusive. The fallback text sent after a
// failure does not count as delivery.
func (d *Dispatcher) sendVideo(ctx context.Context, msg domain.IncomingMessage, mediaURL, caption string) bool {
	body, size, err := d.downloader.Download(ctx, mediaURL)
	if err != nil {
		d.logger.Warn("video size measurement failed", "url", mediaURL, "error", err)
		d.sendVideoFallback(ctx, msg, mediaURL, caption)
		return false
	}

	switch {
	case size <= d.cfg.DownloadLimit:
		body.Close()
		if err := d.sink.SendVideoURL(ctx, msg.ChatID, msg.MessageID, mediaURL, caption); err != nil {
			d.logger.Error("send video by URL failed", "url", mediaURL, "error", err)
			d.sendVideoFallback(ctx, msg, mediaURL, caption)
			return false
		}
		return true

	case size <= d.cfg.UploadLimit:
		return d.uploadVideo(ctx, msg, body, mediaURL, caption)

	default:
		body.Close()
		text := fmt.Sprintf("Video is too large for Telegram upload. Direct video link:\n%s\n\nTweet text:\n%s", mediaURL, caption)
		if _, err := d.sink.SendText(ctx, msg.ChatID, msg.MessageID, text); err != nil {
			d.logger.Error("send oversize video link failed", "url", mediaURL, "error", err)
			return false
		}
		return true
	}
}

// uploadVideo streams the body into a scratch file and uploads that as a
// streamable video. The please-wait notice is removed only after the upload
// landed; the scratch file is removed on every exit path.
func (d *Dispatcher) uploadVideo(ctx context.Context, msg domain.IncomingMessage, body io.ReadCloser, mediaURL, caption string) bool {
	defer body.Close()

	notice, err := d.sink.SendText(ctx, msg.ChatID, msg.MessageID, uploadNotice)
	if err != nil {
		d.logger.Warn("could not send upload notice", "chat_id", msg.ChatID, "error", err)
	}

	file, err := os.CreateTemp(d.cfg.TempDir, "upload-*.mp4")
	if err != nil {
		d.logger.Error("could not create scratch file", "error", err)
		d.sendVideoFallback(ctx, msg, mediaURL, caption)
		return false
	}
	defer func() {
		file.Close()
		os.Remove(file.Name())
	}()

	if _, err := io.Copy(file, body); err != nil {
		d.logger.Error("video download failed", "url", mediaURL, "error", err)
		d.sendVideoFallback(ctx, msg, mediaURL, caption)
		return false
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		d.logger.Error("could not rewind scratch file", "error", err)
		d.sendVideoFallback(ctx, msg, mediaURL, caption)
		return false
	}

	if err := d.sink.SendVideoFile(ctx, msg.ChatID, msg.MessageID, file, caption); err != nil {
		d.logger.Error("video upload failed", "url", mediaURL, "error", err)
		d.sendVideoFallback(ctx, msg, mediaURL, caption)
		return false
	}

	if !notice.IsZero() {
		if err := d.sink.DeleteMessage(ctx, notice); err != nil {
			d.logger.Warn("could not delete upload notice", "chat_id", msg.ChatID, "error", err)
		}
	}

	return true
}

// sendVideoFallback posts the direct link after a delivery attempt failed.
func (d *Dispatcher) sendVideoFallback(ctx context.Context, msg domain.IncomingMessage, mediaURL, caption string) {
	text := fmt.Sprintf("Error occurred when trying to send video. Direct link:\n%s\n\nTweet text:\n%s", mediaURL, caption)
	if _, err := d.sink.SendText(ctx, msg.ChatID, msg.MessageID, text); err != nil {
		d.logger.Error("send video fallback failed", "chat_id", msg.ChatID, "error", err)
	}
}
