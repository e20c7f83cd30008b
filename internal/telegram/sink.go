// Package telegram binds the bot to the Telegram Bot API: the inbound
// update loop, the outbound media sink and the failure reporter.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iconidentify/xcourier/internal/dispatcher"
	"github.com/iconidentify/xcourier/internal/domain"
)

// Sink delivers outbound messages and media through the Bot API.
type Sink struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewSink creates a sink on an authorized bot client.
func NewSink(api *tgbotapi.BotAPI, logger *slog.Logger) *Sink {
	return &Sink{
		api:    api,
		logger: logger,
	}
}

// SendText sends a plain text message and returns a reference to it.
func (s *Sink) SendText(ctx context.Context, chatID int64, replyTo int, text string) (domain.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyTo > 0 {
		msg.ReplyToMessageID = replyTo
	}

	sent, err := s.api.Send(msg)
	if err != nil {
		return domain.MessageRef{}, wrapAPIError(err)
	}

	return domain.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// SendMediaGroup sends the items as one photo album. Captions are taken
// from the items as given.
func (s *Sink) SendMediaGroup(ctx context.Context, chatID int64, replyTo int, items []dispatcher.AlbumItem) error {
	media := make([]interface{}, 0, len(items))
	for _, item := range items {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(item.URL))
		photo.Caption = item.Caption
		media = append(media, photo)
	}

	group := tgbotapi.NewMediaGroup(chatID, media)
	if replyTo > 0 {
		group.ReplyToMessageID = replyTo
	}

	if _, err := s.api.SendMediaGroup(group); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// SendAnimation sends one animation by URL.
func (s *Sink) SendAnimation(ctx context.Context, chatID int64, replyTo int, url, caption string) error {
	anim := tgbotapi.NewAnimation(chatID, tgbotapi.FileURL(url))
	anim.Caption = caption
	if replyTo > 0 {
		anim.ReplyToMessageID = replyTo
	}

	if _, err := s.api.Send(anim); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// SendVideoURL sends a video by URL, letting Telegram fetch it.
func (s *Sink) SendVideoURL(ctx context.Context, chatID int64, replyTo int, url, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileURL(url))
	video.Caption = caption
	video.SupportsStreaming = true
	if replyTo > 0 {
		video.ReplyToMessageID = replyTo
	}

	if _, err := s.api.Send(video); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// SendVideoFile uploads a video from a local file.
func (s *Sink) SendVideoFile(ctx context.Context, chatID int64, replyTo int, file *os.File, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileReader{
		Name:   filepath.Base(file.Name()),
		Reader: file,
	})
	video.Caption = caption
	video.SupportsStreaming = true
	if replyTo > 0 {
		video.ReplyToMessageID = replyTo
	}

	if _, err := s.api.Send(video); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// DeleteMessage removes a previously sent message.
func (s *Sink) DeleteMessage(ctx context.Context, ref domain.MessageRef) error {
	if _, err := s.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// wrapAPIError maps Telegram refusals that mean the chat went away
// (blocked, kicked, token conflict) onto domain.ErrChatUnavailable so
// callers can skip them without special-casing the Bot API.
func wrapAPIError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403, 409:
			return fmt.Errorf("%s: %w", apiErr.Message, domain.ErrChatUnavailable)
		}
	}
	return err
}
