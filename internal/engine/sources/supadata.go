package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

const defaultSupadataBaseURL = "https://api.supadata.ai"

// Supadata fetches transcripts from the Supadata API. It is a secondary
// source for videos whose captions YouTube refuses to serve to this host.
type Supadata struct {
	cfg     *engine.Config
	baseURL string
	retry   engine.RetryConfig
}

type supadataResp struct {
	Lang    string `json:"lang"`
	Content []struct {
		Text     string  `json:"text"`
		Offset   float64 `json:"offset"`   // ms
		Duration float64 `json:"duration"` // ms
	} `json:"content"`
}

// NewSupadata returns nil when no API key is configured.
func NewSupadata(cfg *engine.Config) *Supadata {
	if cfg.SupadataAPIKey == "" {
		return nil
	}
	base := strings.TrimRight(cfg.SupadataBaseURL, "/")
	if base == "" {
		base = defaultSupadataBaseURL
	}
	return &Supadata{cfg: cfg, baseURL: base, retry: engine.DefaultRetryConfig}
}

// Fetch asks Supadata for a transcript. A single language is sent as lang.
// For a preference list lang is left out, Supadata answers in the video's
// own language and the answer is accepted only if that language is listed.
// The broad attempt therefore never repeats the narrow one's request.
func (s *Supadata) Fetch(ctx context.Context, videoID string, languages []string) ([]transcript.RawSegment, error) {
	engine.IncrSupadataRequests()

	q := url.Values{}
	q.Set("url", "https://www.youtube.com/watch?v="+videoID)
	if len(languages) == 1 {
		q.Set("lang", languages[0])
	}
	endpoint := s.baseURL + "/v1/transcript?" + q.Encode()

	resp, err := engine.RetryHTTP(ctx, s.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", s.cfg.SupadataAPIKey)
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return s.cfg.Client().Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: supadata: %v", transcript.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusPartialContent:
		return nil, fmt.Errorf("supadata %s: %w", videoID, transcript.ErrNoTranscript)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: supadata HTTP %d: %s", transcript.ErrRequestFailed, resp.StatusCode, snippet)
	}

	var data supadataResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTimedTextBytes)).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode supadata: %v", transcript.ErrRequestFailed, err)
	}
	if len(data.Content) == 0 {
		return nil, fmt.Errorf("supadata %s: %w", videoID, transcript.ErrNoTranscript)
	}
	if len(languages) > 1 && data.Lang != "" && !slices.Contains(languages, data.Lang) {
		return nil, fmt.Errorf("supadata %s: only %q: %w", videoID, data.Lang, transcript.ErrNoTranscript)
	}

	segs := make([]transcript.RawSegment, 0, len(data.Content))
	for _, c := range data.Content {
		if text := engine.CleanHTML(c.Text); text != "" {
			segs = append(segs, transcript.RawSegment{
				Text:     text,
				Start:    c.Offset / 1000,
				Duration: c.Duration / 1000,
			})
		}
	}
	return segs, nil
}
