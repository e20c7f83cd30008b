package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iconidentify/xcourier/internal/dispatcher"
	"github.com/iconidentify/xcourier/internal/domain"
)

func newTestSink(t *testing.T) (*fakeTelegram, *Sink) {
	t.Helper()
	fake, api := newFakeTelegram(t)
	return fake, NewSink(api, testLogger())
}

func TestSink_SendText(t *testing.T) {
	fake, sink := newTestSink(t)

	ref, err := sink.SendText(context.Background(), 42, 7, "hello there")
	if err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	if ref.ChatID != 42 {
		t.Errorf("ref.ChatID = %d, want 42", ref.ChatID)
	}
	if ref.MessageID == 0 {
		t.Error("ref.MessageID should be set from the API response")
	}

	reqs := fake.requestsFor("sendMessage")
	if len(reqs) != 1 {
		t.Fatalf("sendMessage calls = %d, want 1", len(reqs))
	}
	if got := reqs[0].params.Get("chat_id"); got != "42" {
		t.Errorf("chat_id = %q, want 42", got)
	}
	if got := reqs[0].params.Get("reply_to_message_id"); got != "7" {
		t.Errorf("reply_to_message_id = %q, want 7", got)
	}
	if got := reqs[0].params.Get("text"); got != "hello there" {
		t.Errorf("text = %q", got)
	}
}

func TestSink_SendText_NoReply(t *testing.T) {
	fake, sink := newTestSink(t)

	if _, err := sink.SendText(context.Background(), 42, 0, "hello"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	reqs := fake.requestsFor("sendMessage")
	if len(reqs) != 1 {
		t.Fatalf("sendMessage calls = %d, want 1", len(reqs))
	}
	if reqs[0].params.Has("reply_to_message_id") {
		t.Error("reply_to_message_id should not be set")
	}
}

func TestSink_SendText_BlockedChat(t *testing.T) {
	fake, sink := newTestSink(t)
	fake.failWith("sendMessage", 403, "Forbidden: bot was blocked by the user")

	_, err := sink.SendText(context.Background(), 42, 7, "hello")
	if !errors.Is(err, domain.ErrChatUnavailable) {
		t.Errorf("expected ErrChatUnavailable, got %v", err)
	}
}

func TestSink_SendText_OtherErrorPassedThrough(t *testing.T) {
	fake, sink := newTestSink(t)
	fake.failWith("sendMessage", 400, "Bad Request: message is too long")

	_, err := sink.SendText(context.Background(), 42, 7, "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrChatUnavailable) {
		t.Errorf("400 should not map to ErrChatUnavailable: %v", err)
	}
}

func TestSink_SendMediaGroup(t *testing.T) {
	fake, sink := newTestSink(t)

	items := []dispatcher.AlbumItem{
		{URL: "https://pbs.twimg.com/media/a.jpg?name=orig", Caption: "two cats"},
		{URL: "https://pbs.twimg.com/media/b.jpg?name=orig"},
	}
	if err := sink.SendMediaGroup(context.Background(), 42, 7, items); err != nil {
		t.Fatalf("SendMediaGroup failed: %v", err)
	}

	reqs := fake.requestsFor("sendMediaGroup")
	if len(reqs) != 1 {
		t.Fatalf("sendMediaGroup calls = %d, want 1", len(reqs))
	}
	if got := reqs[0].params.Get("reply_to_message_id"); got != "7" {
		t.Errorf("reply_to_message_id = %q, want 7", got)
	}

	var media []struct {
		Type    string `json:"type"`
		Media   string `json:"media"`
		Caption string `json:"caption"`
	}
	if err := json.Unmarshal([]byte(reqs[0].params.Get("media")), &media); err != nil {
		t.Fatalf("decode media param: %v", err)
	}
	if len(media) != 2 {
		t.Fatalf("media items = %d, want 2", len(media))
	}
	for i, m := range media {
		if m.Type != "photo" {
			t.Errorf("media[%d].Type = %q, want photo", i, m.Type)
		}
		if m.Media != items[i].URL {
			t.Errorf("media[%d].Media = %q, want %q", i, m.Media, items[i].URL)
		}
	}
	if media[0].Caption != "two cats" {
		t.Errorf("first caption = %q, want %q", media[0].Caption, "two cats")
	}
	if media[1].Caption != "" {
		t.Errorf("second caption = %q, want empty", media[1].Caption)
	}
}

func TestSink_SendAnimation(t *testing.T) {
	fake, sink := newTestSink(t)

	err := sink.SendAnimation(context.Background(), 42, 7, "https://video.twimg.com/tweet_video/x.mp4", "funny gif")
	if err != nil {
		t.Fatalf("SendAnimation failed: %v", err)
	}

	reqs := fake.requestsFor("sendAnimation")
	if len(reqs) != 1 {
		t.Fatalf("sendAnimation calls = %d, want 1", len(reqs))
	}
	if got := reqs[0].params.Get("animation"); got != "https://video.twimg.com/tweet_video/x.mp4" {
		t.Errorf("animation = %q", got)
	}
	if got := reqs[0].params.Get("caption"); got != "funny gif" {
		t.Errorf("caption = %q", got)
	}
}

func TestSink_SendVideoURL(t *testing.T) {
	fake, sink := newTestSink(t)

	err := sink.SendVideoURL(context.Background(), 42, 7, "https://video.twimg.com/vid.mp4", "a clip")
	if err != nil {
		t.Fatalf("SendVideoURL failed: %v", err)
	}

	reqs := fake.requestsFor("sendVideo")
	if len(reqs) != 1 {
		t.Fatalf("sendVideo calls = %d, want 1", len(reqs))
	}
	if got := reqs[0].params.Get("video"); got != "https://video.twimg.com/vid.mp4" {
		t.Errorf("video = %q", got)
	}
	if got := reqs[0].params.Get("supports_streaming"); got != "true" {
		t.Errorf("supports_streaming = %q, want true", got)
	}
	if got := reqs[0].params.Get("caption"); got != "a clip" {
		t.Errorf("caption = %q", got)
	}
}

func TestSink_SendVideoFile(t *testing.T) {
	fake, sink := newTestSink(t)

	path := filepath.Join(t.TempDir(), "upload-test.mp4")
	if err := os.WriteFile(path, []byte("fake mp4 bytes"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open temp file: %v", err)
	}
	defer file.Close()

	if err := sink.SendVideoFile(context.Background(), 42, 7, file, "uploaded clip"); err != nil {
		t.Fatalf("SendVideoFile failed: %v", err)
	}

	reqs := fake.requestsFor("sendVideo")
	if len(reqs) != 1 {
		t.Fatalf("sendVideo calls = %d, want 1", len(reqs))
	}
	upload, ok := reqs[0].files["video"]
	if !ok {
		t.Fatal("expected a video file part")
	}
	if upload.filename != "upload-test.mp4" {
		t.Errorf("filename = %q, want upload-test.mp4", upload.filename)
	}
	if string(upload.data) != "fake mp4 bytes" {
		t.Errorf("uploaded data = %q", upload.data)
	}
	if got := reqs[0].params.Get("caption"); got != "uploaded clip" {
		t.Errorf("caption = %q", got)
	}
	if got := reqs[0].params.Get("supports_streaming"); got != "true" {
		t.Errorf("supports_streaming = %q, want true", got)
	}
}

func TestSink_DeleteMessage(t *testing.T) {
	fake, sink := newTestSink(t)

	err := sink.DeleteMessage(context.Background(), domain.MessageRef{ChatID: 42, MessageID: 99})
	if err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}

	reqs := fake.requestsFor("deleteMessage")
	if len(reqs) != 1 {
		t.Fatalf("deleteMessage calls = %d, want 1", len(reqs))
	}
	if got := reqs[0].params.Get("chat_id"); got != "42" {
		t.Errorf("chat_id = %q, want 42", got)
	}
	if got := reqs[0].params.Get("message_id"); got != "99" {
		t.Errorf("message_id = %q, want 99", got)
	}
}
