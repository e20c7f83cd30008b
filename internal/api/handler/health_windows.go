//go:build windows
// +build windows

package handler

// The bot is deployed in Linux containers; Windows builds skip scratch
// disk and CPU accounting.

func diskUsage(path string) (totalBytes, freeBytes int64, ok bool) {
	return 0, 0, false
}

func cpuPercent() float64 {
	return 0
}
