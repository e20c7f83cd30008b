// Package stats persists usage counters and keeps a short in-memory log of
// recent pipeline activity.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iconidentify/xcourier/internal/config"
)

// Counter names as stored in the counters table.
const (
	counterMessages = "messages_handled"
	counterMedia    = "media_downloaded"
)

// ActivityKind labels one entry of the activity log.
type ActivityKind string

const (
	ActivityMessage     ActivityKind = "message"
	ActivityDelivered   ActivityKind = "delivered"
	ActivityScrapeError ActivityKind = "scrape_error"
	ActivityNoMedia     ActivityKind = "no_media"
)

// Activity is one recent pipeline event.
type Activity struct {
	Time   time.Time    `json:"time"`
	Kind   ActivityKind `json:"kind"`
	ChatID int64        `json:"chat_id"`
	PostID string       `json:"post_id,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

// Snapshot is a point-in-time view of the usage counters.
type Snapshot struct {
	MessagesHandled int64 `json:"messages_handled"`
	MediaDownloaded int64 `json:"media_downloaded"`
}

// Store keeps usage counters in memory backed by SQLite, plus a fixed-size
// ring of recent activity. Counters survive restarts; the ring does not.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	messagesHandled int64
	mediaDownloaded int64

	mu    sync.RWMutex
	ring  []Activity
	head  int // next write position
	count int // number of entries in the ring
}

// NewStore opens the counter database and loads persisted values.
func NewStore(cfg config.StatsConfig, logger *slog.Logger) (*Store, error) {
	size := cfg.ActivitySize
	if size <= 0 {
		size = 256
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
		ring:   make([]Activity, size),
	}

	if err := s.loadCounters(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) loadCounters() error {
	rows, err := s.db.Query(`SELECT name, value FROM counters`)
	if err != nil {
		return fmt.Errorf("query counters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return fmt.Errorf("scan counter: %w", err)
		}
		switch name {
		case counterMessages:
			atomic.StoreInt64(&s.messagesHandled, value)
		case counterMedia:
			atomic.StoreInt64(&s.mediaDownloaded, value)
		}
	}
	return rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IncrMessagesHandled counts one handled incoming message.
func (s *Store) IncrMessagesHandled() {
	v := atomic.AddInt64(&s.messagesHandled, 1)
	s.persistCounter(counterMessages, v)
}

// AddMediaDownloaded counts n successfully delivered media items.
func (s *Store) AddMediaDownloaded(n int) {
	v := atomic.AddInt64(&s.mediaDownloaded, int64(n))
	s.persistCounter(counterMedia, v)
}

// Snapshot returns the current counter values.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		MessagesHandled: atomic.LoadInt64(&s.messagesHandled),
		MediaDownloaded: atomic.LoadInt64(&s.mediaDownloaded),
	}
}

// Reset zeroes both counters, in memory and on disk.
func (s *Store) Reset(ctx context.Context) error {
	atomic.StoreInt64(&s.messagesHandled, 0)
	atomic.StoreInt64(&s.mediaDownloaded, 0)

	if _, err := s.db.ExecContext(ctx, `UPDATE counters SET value = 0`); err != nil {
		return fmt.Errorf("reset counters: %w", err)
	}
	return nil
}

func (s *Store) persistCounter(name string, value int64) {
	_, err := s.db.Exec(`
		INSERT INTO counters (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, name, value)
	if err != nil {
		s.logger.Warn("failed to persist counter", "counter", name, "error", err)
	}
}

// RecordActivity appends one entry to the activity ring.
func (s *Store) RecordActivity(kind ActivityKind, chatID int64, postID, detail string) {
	entry := Activity{
		Time:   time.Now(),
		Kind:   kind,
		ChatID: chatID,
		PostID: postID,
		Detail: detail,
	}

	s.mu.Lock()
	s.ring[s.head] = entry
	s.head = (s.head + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
	s.mu.Unlock()
}

// RecentActivity returns up to n entries, most recent first.
func (s *Store) RecentActivity(n int) []Activity {
	if n <= 0 {
		n = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > s.count {
		n = s.count
	}

	result := make([]Activity, 0, n)
	for i := 0; i < n; i++ {
		idx := (s.head - 1 - i + len(s.ring)) % len(s.ring)
		result = append(result, s.ring[idx])
	}
	return result
}
