package sources

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

type chain []transcript.Fetcher

// Chain returns a Fetcher that tries each fetcher in order. When all fail,
// the first fetcher's error is returned.
func Chain(fetchers ...transcript.Fetcher) transcript.Fetcher {
	var c chain
	for _, f := range fetchers {
		if f != nil {
			c = append(c, f)
		}
	}
	if len(c) == 1 {
		return c[0]
	}
	return c
}

func (c chain) Fetch(ctx context.Context, videoID string, languages []string) ([]transcript.RawSegment, error) {
	if len(c) == 0 {
		return nil, errors.New("no transcript sources configured")
	}
	var firstErr error
	for i, f := range c {
		segs, err := f.Fetch(ctx, videoID, languages)
		if err == nil {
			return segs, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			break
		}
		if i < len(c)-1 {
			slog.Debug("source failed, trying next", slog.String("id", videoID), slog.Int("source", i), slog.Any("err", err))
		}
	}
	return nil, firstErr
}
