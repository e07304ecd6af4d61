package sources

// YouTube caption fetching is split across three files by responsibility:
//   youtube.go            — the YouTube source: config, rate limiting, Fetch entry point
//   youtube_innertube.go  — player response and timedtext wire types, JSON extraction
//   youtube_transcript.go — watch page scrape, track selection, timedtext parsing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

const defaultYouTubeBaseURL = "https://www.youtube.com"

// YouTube fetches caption tracks straight from youtube.com.
type YouTube struct {
	cfg     *engine.Config
	baseURL string
	limiter *rate.Limiter
	retry   engine.RetryConfig
}

// NewYouTube creates a YouTube source. cfg.YouTubeRPS <= 0 disables pacing.
func NewYouTube(cfg *engine.Config) *YouTube {
	base := strings.TrimRight(cfg.YouTubeBaseURL, "/")
	if base == "" {
		base = defaultYouTubeBaseURL
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.YouTubeRPS > 0 {
		burst := int(cfg.YouTubeRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.YouTubeRPS), burst)
	}
	return &YouTube{
		cfg:     cfg,
		baseURL: base,
		limiter: limiter,
		retry:   engine.DefaultRetryConfig,
	}
}

// Fetch returns the caption segments of the first track matching languages.
func (y *YouTube) Fetch(ctx context.Context, videoID string, languages []string) ([]transcript.RawSegment, error) {
	engine.IncrYouTubeRequests()
	if y.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.cfg.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	player, err := y.playerResponse(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := playabilityError(player); err != nil {
		return nil, fmt.Errorf("%s: %w", videoID, err)
	}

	tracks := player.captionTracks()
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%s: %w", videoID, transcript.ErrTranscriptsDisabled)
	}
	track, ok := pickTrack(tracks, languages)
	if !ok {
		return nil, fmt.Errorf("%s: requested %v, available %v: %w",
			videoID, languages, trackLanguages(tracks), transcript.ErrNoTranscript)
	}

	segs, err := y.timedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	slog.Debug("youtube: captions fetched",
		slog.String("id", videoID),
		slog.String("lang", track.LanguageCode),
		slog.Bool("generated", track.Kind == "asr"),
		slog.Int("segments", len(segs)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return segs, nil
}

func (y *YouTube) wait(ctx context.Context) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", transcript.ErrRequestFailed, err)
	}
	return nil
}
