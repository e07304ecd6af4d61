package transcript

import (
	"fmt"
	"math"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

const (
	sectionSeconds    = 120
	sectionPreviewLen = 500
	ellipsis          = "..."
)

// RawSegment is one caption entry as returned by a source. Times are seconds.
type RawSegment struct {
	Text     string
	Start    float64
	Duration float64
}

// Segment is a caption entry with times in milliseconds.
type Segment struct {
	Text       string `json:"text"`
	OffsetMs   int64  `json:"offset"`
	DurationMs int64  `json:"duration"`
}

// Section is a ~120 second window of caption text used for navigation.
type Section struct {
	StartMs   int64  `json:"startTime"`
	EndMs     int64  `json:"endTime"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Transcript is the structured response payload.
type Transcript struct {
	Segments        []Segment `json:"segments"`
	FullText        string    `json:"fullText"`
	Sections        []Section `json:"sections"`
	TotalDurationMs int64     `json:"totalDuration"`
}

// Format builds a Transcript from segments ordered by start time.
// It returns false for an empty input.
//
// The total duration is taken from the last segment in input order, not the
// maximum end time, so unordered input yields a wrong total.
func Format(raw []RawSegment) (*Transcript, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	texts := make([]string, len(raw))
	segments := make([]Segment, len(raw))
	for i, s := range raw {
		texts[i] = s.Text
		segments[i] = Segment{
			Text:       s.Text,
			OffsetMs:   toMs(s.Start),
			DurationMs: toMs(s.Duration),
		}
	}

	last := raw[len(raw)-1]
	total := toMs(last.Start + last.Duration)

	return &Transcript{
		Segments:        segments,
		FullText:        strings.Join(texts, " "),
		Sections:        buildSections(raw, total),
		TotalDurationMs: total,
	}, true
}

func buildSections(raw []RawSegment, totalMs int64) []Section {
	var (
		sections     []Section
		pending      []string
		sectionStart float64
	)
	flush := func(endMs int64) {
		startMs := toMs(sectionStart)
		sections = append(sections, Section{
			StartMs:   startMs,
			EndMs:     endMs,
			Title:     fmt.Sprintf("Section %d", len(sections)+1),
			Content:   engine.TruncateRunes(strings.Join(pending, " "), sectionPreviewLen, ellipsis),
			Timestamp: FormatTimestamp(startMs),
		})
		pending = pending[:0]
	}

	for _, s := range raw {
		pending = append(pending, s.Text)
		if s.Start-sectionStart >= sectionSeconds {
			flush(toMs(s.Start))
			sectionStart = s.Start
		}
	}
	if len(pending) > 0 {
		flush(totalMs)
	}
	return sections
}

// FormatTimestamp renders milliseconds as M:SS. Minutes are not wrapped into
// hours, so one hour is "60:00".
func FormatTimestamp(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// WordCount returns the number of whitespace separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func toMs(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
