package downloader

import (
	"context"
	"io"
)

// Downloader fetches media content from URLs.
type Downloader interface {
	// Download opens a streaming fetch of the media at url and returns the
	// body together with the declared content length. The caller decides
	// whether to read or discard the stream and must close the reader.
	Download(ctx context.Context, url string) (io.ReadCloser, int64, error)

	// Probe checks URL accessibility without downloading full content.
	Probe(ctx context.Context, url string) (*ProbeResult, error)
}

// ProbeResult contains information about a media URL.
type ProbeResult struct {
	ContentType   string
	ContentLength int64
	Accessible    bool
	Error         string
}
