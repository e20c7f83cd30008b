package domain

import "errors"

// Domain errors.
var (
	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoJobs is returned when there are no jobs to process.
	ErrNoJobs = errors.New("no jobs available")

	// ErrSizeUnknown is returned when a media response carries no usable
	// content length.
	ErrSizeUnknown = errors.New("content length unknown")

	// ErrURLExpired is returned when a media URL has expired.
	ErrURLExpired = errors.New("media URL has expired")

	// ErrRateLimited is returned when rate limited by external services.
	ErrRateLimited = errors.New("rate limited")

	// ErrChatUnavailable is returned when Telegram refuses delivery to a
	// chat, e.g. the bot was blocked or kicked. Callers treat it as
	// non-fatal.
	ErrChatUnavailable = errors.New("chat unavailable")
)

// ScrapeErrorKind classifies failures of the scraping API call.
type ScrapeErrorKind string

const (
	// ScrapeTransport means the fetch failed or returned an error status.
	ScrapeTransport ScrapeErrorKind = "transport"

	// ScrapeMalformed means the response was neither valid JSON nor a
	// recognizable error page.
	ScrapeMalformed ScrapeErrorKind = "malformed"

	// ScrapeAPIReported means the remote service explicitly reported a
	// problem, e.g. a deleted or private post.
	ScrapeAPIReported ScrapeErrorKind = "api_reported"
)

// ScrapeError wraps a failure to scrape one post.
type ScrapeError struct {
	PostID  PostID
	Kind    ScrapeErrorKind
	Message string // human-readable reason, set for APIReported
	Err     error
}

func (e *ScrapeError) Error() string {
	if e.Kind == ScrapeAPIReported {
		return "API returned error: " + e.Message
	}
	if e.Err != nil {
		return "scrape " + e.PostID.String() + ": " + e.Err.Error()
	}
	return "scrape " + e.PostID.String() + ": " + string(e.Kind)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a ScrapeError wrapping a cause.
func NewScrapeError(postID PostID, kind ScrapeErrorKind, err error) *ScrapeError {
	return &ScrapeError{
		PostID: postID,
		Kind:   kind,
		Err:    err,
	}
}
