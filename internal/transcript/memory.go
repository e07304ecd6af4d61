package transcript

import (
	"context"
	"fmt"
	"sync"
)

// MemoryFetcher is an in-memory Fetcher keyed by video ID and language code.
// It is used in place of a network source in tests and local runs.
type MemoryFetcher struct {
	mu     sync.Mutex
	tracks map[string]map[string][]RawSegment
	errs   map[string]error
	calls  [][]string
}

// NewMemoryFetcher returns an empty MemoryFetcher.
func NewMemoryFetcher() *MemoryFetcher {
	return &MemoryFetcher{
		tracks: make(map[string]map[string][]RawSegment),
		errs:   make(map[string]error),
	}
}

// AddTrack registers segments for videoID in language lang.
func (m *MemoryFetcher) AddTrack(videoID, lang string, segs []RawSegment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tracks[videoID] == nil {
		m.tracks[videoID] = make(map[string][]RawSegment)
	}
	m.tracks[videoID][lang] = segs
}

// FailWith makes every fetch for videoID return err.
func (m *MemoryFetcher) FailWith(videoID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[videoID] = err
}

// Calls returns the language lists passed to Fetch, in call order.
func (m *MemoryFetcher) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Fetch returns the track of the first requested language that exists.
func (m *MemoryFetcher) Fetch(_ context.Context, videoID string, languages []string) ([]RawSegment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]string(nil), languages...))

	if err, ok := m.errs[videoID]; ok {
		return nil, err
	}
	tracks, ok := m.tracks[videoID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", videoID, ErrVideoUnavailable)
	}
	for _, lang := range languages {
		if segs, ok := tracks[lang]; ok {
			return segs, nil
		}
	}
	return nil, fmt.Errorf("%s %v: %w", videoID, languages, ErrNoTranscript)
}
