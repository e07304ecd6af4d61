// Package transcript turns a YouTube URL or video ID into a structured
// transcript: it resolves the video identifier, fetches caption segments
// through a Fetcher with a two-step language fallback, and re-buckets the
// segments into fixed 120-second sections.
package transcript
