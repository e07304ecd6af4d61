package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

const (
	// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
	ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

	maxWatchPageBytes = 6 * 1024 * 1024
	maxTimedTextBytes = 2 * 1024 * 1024
)

// playerResponse scrapes the watch page and decodes ytInitialPlayerResponse.
func (y *YouTube) playerResponse(ctx context.Context, videoID string) (*playerResp, error) {
	body, err := y.watchPage(ctx, y.baseURL+"/watch?v="+videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: watch page: %v", transcript.ErrRequestFailed, err)
	}

	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, fmt.Errorf("%w: ytInitialPlayerResponse not found in watch page", transcript.ErrRequestFailed)
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, fmt.Errorf("%w: unterminated ytInitialPlayerResponse", transcript.ErrRequestFailed)
	}

	var player playerResp
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("%w: decode ytInitialPlayerResponse: %v", transcript.ErrRequestFailed, err)
	}
	return &player, nil
}

// watchPage fetches the watch page HTML, through the Chrome-fingerprinted
// client when one is configured.
func (y *YouTube) watchPage(ctx context.Context, watchURL string) ([]byte, error) {
	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		if err := y.wait(ctx); err != nil {
			return nil, err
		}
		if bc := y.cfg.BrowserClient; bc != nil {
			return browserGet(bc, watchURL)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.AddCookie(&http.Cookie{Name: "CONSENT", Value: "YES+1"})
		return y.cfg.Client().Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxWatchPageBytes))
}

// browserGet adapts a BrowserClient fetch to an *http.Response so the status
// goes through the same retry policy as the net/http path.
func browserGet(bc *engine.BrowserClient, target string) (*http.Response, error) {
	headers := engine.ChromeHeaders()
	headers["accept-language"] = "en-US,en;q=0.9"
	headers["cookie"] = "CONSENT=YES+1"
	data, _, status, err := bc.Do(http.MethodGet, target, headers, nil)
	if err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
	}, nil
}

// playabilityError maps a non-playable status to a typed failure.
func playabilityError(p *playerResp) error {
	if p.PlayabilityStatus == nil {
		return nil
	}
	status, reason := p.PlayabilityStatus.Status, p.PlayabilityStatus.Reason
	switch status {
	case "", "OK":
		return nil
	case "LOGIN_REQUIRED":
		// YouTube answers datacenter IPs with a bot check instead of the video.
		if strings.Contains(strings.ToLower(reason), "bot") {
			return fmt.Errorf("%w: %s", transcript.ErrRequestFailed, reason)
		}
	}
	if reason == "" {
		reason = strings.ToLower(status)
	}
	return fmt.Errorf("%w: %s", transcript.ErrVideoUnavailable, reason)
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack selects the caption track for the first language in langs that
// has one. Within a language a manual track wins over an auto-generated one.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	for _, lang := range langs {
		var generated *captionTrack
		for i, t := range tracks {
			if t.LanguageCode != lang || needsPoToken(t.BaseURL) {
				continue
			}
			if t.Kind != "asr" {
				return t, true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return captionTrack{}, false
}

func trackLanguages(tracks []captionTrack) []string {
	langs := make([]string, 0, len(tracks))
	for _, t := range tracks {
		code := t.LanguageCode
		if t.Kind == "asr" {
			code += "(auto)"
		}
		langs = append(langs, code)
	}
	return langs
}

// timedText fetches and parses a caption track.
func (y *YouTube) timedText(ctx context.Context, baseURL string) ([]transcript.RawSegment, error) {
	// srv3 is parsed too, but the classic format carries seconds directly.
	trackURL := strings.Replace(baseURL, "&fmt=srv3", "", 1)

	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		if err := y.wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return y.cfg.Client().Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: timedtext: %v", transcript.ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: timedtext status %d", transcript.ErrRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTimedTextBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read timedtext: %v", transcript.ErrRequestFailed, err)
	}
	return parseTimedText(body)
}

// parseTimedText decodes classic or srv3 timedtext XML into segments.
// Lines that are empty after cleanup are dropped.
func parseTimedText(body []byte) ([]transcript.RawSegment, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty timedtext response")
	}
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segs := make([]transcript.RawSegment, 0, len(tt.Lines)+len(tt.Body.Paras))
	for _, line := range tt.Lines {
		if text := engine.CleanHTML(line.Text); text != "" {
			segs = append(segs, transcript.RawSegment{Text: text, Start: line.Start, Duration: line.Dur})
		}
	}
	for _, p := range tt.Body.Paras {
		if text := engine.CleanHTML(p.Inner); text != "" {
			segs = append(segs, transcript.RawSegment{
				Text:     text,
				Start:    float64(p.T) / 1000,
				Duration: float64(p.D) / 1000,
			})
		}
	}
	return segs, nil
}
