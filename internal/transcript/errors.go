package transcript

import "errors"

// Fetch failures reported by sources. Sources wrap these with %w.
var (
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrVideoUnavailable    = errors.New("video is unavailable")
	ErrNoTranscript        = errors.New("no transcript found for the requested languages")
	ErrRequestFailed       = errors.New("youtube request failed")
)

// Request-level failures.
var (
	ErrMissingURL      = errors.New("missing required field: url")
	ErrInvalidVideoID  = errors.New("invalid YouTube URL or video ID")
	ErrEmptyTranscript = errors.New("failed to process transcript: no segments")
)
