package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

const slowFetchThreshold = 10 * time.Second

// Fetcher retrieves caption segments for a video, trying languages in order.
// Failures wrap one of the Err* sentinels in this package where possible.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string, languages []string) ([]RawSegment, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, videoID string, languages []string) ([]RawSegment, error)

func (f FetcherFunc) Fetch(ctx context.Context, videoID string, languages []string) ([]RawSegment, error) {
	return f(ctx, videoID, languages)
}

// Service resolves, fetches and formats transcripts.
type Service struct {
	fetcher  Fetcher
	attempts [][]string
	logger   *slog.Logger
}

// NewService creates a Service. attempts is the ordered list of language
// preferences; the first attempt that returns segments wins.
func NewService(fetcher Fetcher, attempts [][]string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetcher: fetcher, attempts: attempts, logger: logger}
}

// Fetch runs the language attempts in order and returns the first success.
// Earlier failures are swallowed; the last failure is returned if none succeed.
func (s *Service) Fetch(ctx context.Context, videoID string) ([]RawSegment, error) {
	if len(s.attempts) == 0 {
		return nil, fmt.Errorf("%s: %w", videoID, ErrNoTranscript)
	}

	var lastErr error
	for i, langs := range s.attempts {
		engine.IncrFetchAttempts()
		segs, err := s.fetcher.Fetch(ctx, videoID, langs)
		if err == nil {
			if i > 0 {
				engine.IncrFallbackHits()
			}
			s.logger.Info("transcript found",
				slog.String("video_id", videoID),
				slog.String("languages", strings.Join(langs, ",")),
				slog.Int("segments", len(segs)),
			)
			return segs, nil
		}
		engine.IncrFetchFailures()
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		s.logger.Debug("transcript attempt failed",
			slog.String("video_id", videoID),
			slog.String("languages", strings.Join(langs, ",")),
			slog.Any("error", err),
		)
	}
	return nil, lastErr
}

// Transcript resolves input to a video ID, fetches its captions and formats
// them. input may be a bare ID or a YouTube URL.
func (s *Service) Transcript(ctx context.Context, input string) (*Transcript, string, error) {
	engine.IncrTranscriptRequests()

	videoID, ok := ExtractVideoID(input)
	if !ok {
		engine.IncrTranscriptErrors()
		return nil, "", ErrInvalidVideoID
	}
	s.logger.Info("fetching transcript", slog.String("video_id", videoID))

	var raw []RawSegment
	err := engine.TrackOperation(ctx, "transcript_fetch", slowFetchThreshold, func(ctx context.Context) error {
		var err error
		raw, err = s.Fetch(ctx, videoID)
		return err
	})
	if err != nil {
		engine.IncrTranscriptErrors()
		s.logger.Warn("no transcript available", slog.String("video_id", videoID), slog.Any("error", err))
		return nil, videoID, &FetchError{VideoID: videoID, Err: err}
	}

	t, ok := Format(raw)
	if !ok {
		engine.IncrTranscriptErrors()
		return nil, videoID, ErrEmptyTranscript
	}
	s.logger.Info("transcript processed",
		slog.String("video_id", videoID),
		slog.Int("segments", len(t.Segments)),
		slog.Int("words", WordCount(t.FullText)),
	)
	return t, videoID, nil
}

// FetchError wraps the final failure of all language attempts for a video.
type FetchError struct {
	VideoID string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch transcript %s: %v", e.VideoID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
