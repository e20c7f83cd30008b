package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/iconidentify/xcourier/internal/repository"
	"github.com/iconidentify/xcourier/internal/stats"
)

var startTime = time.Now()

// StatsSource provides usage counters and the recent activity feed.
type StatsSource interface {
	Snapshot() stats.Snapshot
	RecentActivity(n int) []stats.Activity
}

// HealthHandler handles health check and stats endpoints.
type HealthHandler struct {
	queue      repository.MessageQueue
	source     StatsSource
	scratchDir string
}

// NewHealthHandler creates a new health handler. scratchDir is the
// directory video uploads are staged in; empty means the system temp
// directory, matching what the delivery side does.
func NewHealthHandler(queue repository.MessageQueue, source StatsSource, scratchDir string) *HealthHandler {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &HealthHandler{
		queue:      queue,
		source:     source,
		scratchDir: scratchDir,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Queue     *QueueStats `json:"queue,omitempty"`
}

// QueueStats contains message queue statistics.
type QueueStats struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Check the message queue is accessible
	qs, err := h.queue.Stats(ctx)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(HealthResponse{
			Status:    "error",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Queue: &QueueStats{
			Queued:     qs.Queued,
			Processing: qs.Processing,
			Completed:  qs.Completed,
			Failed:     qs.Failed,
		},
	})
}

// SystemStats contains process and bot statistics.
type SystemStats struct {
	Uptime          int64         `json:"uptime_seconds"`
	UptimeHuman     string        `json:"uptime_human"`
	MemAllocMB      int64         `json:"mem_alloc_mb"`
	MemSysMB        int64         `json:"mem_sys_mb"`
	MemHeapMB       int64         `json:"mem_heap_mb"`
	NumGoroutines   int           `json:"num_goroutines"`
	NumCPU          int           `json:"num_cpu"`
	CPUPercent      float64       `json:"cpu_percent"`
	MessagesHandled int64         `json:"messages_handled"`
	MediaDownloaded int64         `json:"media_downloaded"`
	Scratch         *ScratchStats `json:"scratch,omitempty"`
	Queue           *QueueStats   `json:"queue,omitempty"`
}

// ScratchStats describes capacity of the filesystem holding the video
// staging directory. An oversized upload needs as much free space there
// as the video itself.
type ScratchStats struct {
	Path        string  `json:"path"`
	TotalMB     int64   `json:"total_mb"`
	FreeMB      int64   `json:"free_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// Stats handles GET /api/v1/stats - process and bot statistics.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(startTime)
	snap := h.source.Snapshot()

	resp := SystemStats{
		Uptime:          int64(uptime.Seconds()),
		UptimeHuman:     formatUptime(uptime),
		MemAllocMB:      int64(m.Alloc / 1024 / 1024),
		MemSysMB:        int64(m.Sys / 1024 / 1024),
		MemHeapMB:       int64(m.HeapAlloc / 1024 / 1024),
		NumGoroutines:   runtime.NumGoroutine(),
		NumCPU:          runtime.NumCPU(),
		CPUPercent:      cpuPercent(),
		MessagesHandled: snap.MessagesHandled,
		MediaDownloaded: snap.MediaDownloaded,
	}

	if total, free, ok := diskUsage(h.scratchDir); ok && total > 0 {
		resp.Scratch = &ScratchStats{
			Path:        h.scratchDir,
			TotalMB:     total / 1024 / 1024,
			FreeMB:      free / 1024 / 1024,
			UsedPercent: float64(total-free) / float64(total) * 100,
		}
	}

	if qs, err := h.queue.Stats(r.Context()); err == nil {
		resp.Queue = &QueueStats{
			Queued:     qs.Queued,
			Processing: qs.Processing,
			Completed:  qs.Completed,
			Failed:     qs.Failed,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// ActivityResponse is the JSON response for the recent activity feed.
type ActivityResponse struct {
	Count  int              `json:"count"`
	Events []stats.Activity `json:"events"`
}

// Activity handles GET /api/v1/activity - recent pipeline activity,
// most recent first. The limit query parameter caps the number of
// entries returned.
func (h *HealthHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	events := h.source.RecentActivity(limit)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ActivityResponse{
		Count:  len(events),
		Events: events,
	})
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
