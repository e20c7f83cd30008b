//go:build linux || darwin
// +build linux darwin

package handler

import (
	"sync"
	"syscall"
	"time"
)

// Process CPU accounting holds the previous sample so each reading
// reports usage since the last poll rather than since process start.
var cpuState struct {
	sync.Mutex
	cpu  time.Duration
	wall time.Time
}

// diskUsage reports capacity of the filesystem holding path.
func diskUsage(path string) (totalBytes, freeBytes int64, ok bool) {
	var fs syscall.Statfs_t
	if err := syscall.Statfs(path, &fs); err != nil {
		return 0, 0, false
	}
	bsize := int64(fs.Bsize)
	return int64(fs.Blocks) * bsize, int64(fs.Bavail) * bsize, true
}

// cpuPercent reports process CPU time spent since the previous call as
// a percentage of one core, capped at 100.
func cpuPercent() float64 {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	used := time.Duration(ru.Utime.Sec)*time.Second + time.Duration(ru.Utime.Usec)*time.Microsecond +
		time.Duration(ru.Stime.Sec)*time.Second + time.Duration(ru.Stime.Usec)*time.Microsecond
	now := time.Now()

	cpuState.Lock()
	defer cpuState.Unlock()

	if cpuState.wall.IsZero() {
		cpuState.cpu, cpuState.wall = used, now
		return 0
	}

	delta := used - cpuState.cpu
	elapsed := now.Sub(cpuState.wall)
	cpuState.cpu, cpuState.wall = used, now

	if elapsed <= 0 || delta < 0 {
		return 0
	}
	pct := float64(delta) / float64(elapsed) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
