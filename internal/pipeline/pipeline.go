// Package pipeline turns one incoming message into media deliveries:
// resolve post IDs from the text, scrape each post, dispatch its media.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iconidentify/xcourier/internal/domain"
	"github.com/iconidentify/xcourier/internal/stats"
)

// Resolver extracts post IDs from message text.
type Resolver interface {
	ExtractPostIDs(ctx context.Context, text string) []domain.PostID
}

// Scraper fetches post text and media URLs.
type Scraper interface {
	Scrape(ctx context.Context, id domain.PostID) (*domain.ScrapeResult, error)
}

// Dispatcher delivers scraped media to the originating chat and reports
// whether anything was delivered.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.IncomingMessage, result *domain.ScrapeResult) bool
}

// Replier sends plain text replies.
type Replier interface {
	SendText(ctx context.Context, chatID int64, replyTo int, text string) (domain.MessageRef, error)
}

// Recorder tracks usage counters and recent activity.
type Recorder interface {
	IncrMessagesHandled()
	RecordActivity(kind stats.ActivityKind, chatID int64, postID, detail string)
}

// Pipeline orchestrates resolve, scrape and dispatch for one message.
type Pipeline struct {
	resolver   Resolver
	scraper    Scraper
	dispatcher Dispatcher
	replier    Replier
	recorder   Recorder
	logger     *slog.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(
	resolver Resolver,
	scraper Scraper,
	dispatcher Dispatcher,
	replier Replier,
	recorder Recorder,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		resolver:   resolver,
		scraper:    scraper,
		dispatcher: dispatcher,
		replier:    replier,
		recorder:   recorder,
		logger:     logger,
	}
}

// HandleMessage processes one incoming message end to end. Scrape and
// delivery problems are reported back to the chat and do not fail the
// job; the returned error covers only replies that could not be sent.
func (p *Pipeline) HandleMessage(ctx context.Context, msg domain.IncomingMessage) error {
	p.recorder.IncrMessagesHandled()
	p.recorder.RecordActivity(stats.ActivityMessage, msg.ChatID, "", "")

	ids := p.resolver.ExtractPostIDs(ctx, msg.Text)
	if len(ids) == 0 {
		return p.reply(ctx, msg, "No supported tweet link found")
	}

	var mediaFound, mediaDelivered bool
	for _, id := range ids {
		result, err := p.scraper.Scrape(ctx, id)
		if err != nil {
			if rerr := p.replyScrapeError(ctx, msg, id, err); rerr != nil {
				return rerr
			}
			continue
		}

		if !result.HasMedia() {
			p.recorder.RecordActivity(stats.ActivityNoMedia, msg.ChatID, id.String(), "")
			text := fmt.Sprintf("Tweet %s has no media\n\nTweet text:\n%s", id, domain.TruncateCaption(result.Text))
			if rerr := p.reply(ctx, msg, text); rerr != nil {
				return rerr
			}
			continue
		}

		mediaFound = true
		if p.dispatcher.Dispatch(ctx, msg, result) {
			mediaDelivered = true
			p.recorder.RecordActivity(stats.ActivityDelivered, msg.ChatID, id.String(), "")
		}
	}

	if mediaFound && !mediaDelivered {
		return p.reply(ctx, msg, "No supported media found")
	}

	return nil
}

func (p *Pipeline) replyScrapeError(ctx context.Context, msg domain.IncomingMessage, id domain.PostID, err error) error {
	p.logger.Warn("scrape failed", "post_id", id, "error", err)
	p.recorder.RecordActivity(stats.ActivityScrapeError, msg.ChatID, id.String(), err.Error())

	var scrapeErr *domain.ScrapeError
	if errors.As(err, &scrapeErr) && scrapeErr.Kind == domain.ScrapeAPIReported {
		return p.reply(ctx, msg, fmt.Sprintf("Error occurred when scraping tweet %s\n%s", id, err))
	}
	return p.reply(ctx, msg, "Error handling tweet "+id.String())
}

// reply sends a text reply quoting the originating message. Chats that
// refuse delivery (blocked, kicked) are logged and skipped.
func (p *Pipeline) reply(ctx context.Context, msg domain.IncomingMessage, text string) error {
	_, err := p.replier.SendText(ctx, msg.ChatID, msg.MessageID, text)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrChatUnavailable) {
		p.logger.Warn("reply not delivered", "chat_id", msg.ChatID, "error", err)
		return nil
	}
	return fmt.Errorf("send reply: %w", err)
}
