package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

const (
	testVideoID = "dQw4w9WgXcQ"

	classicTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
		`<text start="0.16" dur="2.5">we&amp;#39;re no strangers</text>` +
		`<text start="2.66" dur="1.9">to &lt;i&gt;love&lt;/i&gt;</text>` +
		`<text start="4.56" dur="1"></text>` +
		`<text start="5.0" dur="3.25">you know
the rules</text>` +
		`</transcript>`

	srv3TimedText = `<?xml version="1.0" encoding="utf-8" ?><timedtext format="3"><body>` +
		`<p t="1200" d="3400">hallo <s>welt</s></p>` +
		`<p t="4600" d="1000"></p>` +
		`<p t="5600" d="2000">tsch&#252;ss</p>` +
		`</body></timedtext>`
)

func watchPageHTML(playerJSON string) string {
	return `<!DOCTYPE html><html><head><script>var ytInitialPlayerResponse = ` +
		playerJSON + `;var meta = {"a":"}"};</script></head><body></body></html>`
}

func okPlayerJSON(tracks string) string {
	return `{"playabilityStatus":{"status":"OK"},"videoDetails":{"videoId":"` + testVideoID +
		`","title":"A \"quoted\" {title}"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
		tracks + `]}}}`
}

type fakeYouTube struct {
	watch        func(w http.ResponseWriter, r *http.Request)
	timedTextXML string
	watchCalls   atomic.Int32
}

func newFakeYouTube(t *testing.T, f *fakeYouTube) (*httptest.Server, *YouTube) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		f.watchCalls.Add(1)
		f.watch(w, r)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("fmt"), "srv3 fmt param must be stripped")
		fmt.Fprint(w, f.timedTextXML)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &engine.Config{
		YouTubeBaseURL: srv.URL,
		FetchTimeout:   5 * time.Second,
		HTTPClient:     srv.Client(),
	}
	yt := NewYouTube(cfg)
	yt.retry = engine.RetryConfig{MaxRetries: 1, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1}
	return srv, yt
}

// serverBase returns the fake server's own URL as seen by the request.
func serverBase(r *http.Request) string {
	return "http://" + r.Host
}

func trackJSON(baseURL, lang, kind string) string {
	return fmt.Sprintf(`{"baseUrl":%q,"languageCode":%q,"kind":%q}`, baseURL, lang, kind)
}

func TestYouTubeFetchClassic(t *testing.T) {
	f := &fakeYouTube{timedTextXML: classicTimedText}
	f.watch = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testVideoID, r.URL.Query().Get("v"))
		tracks := trackJSON(serverBase(r)+"/api/timedtext?v="+testVideoID+"&lang=en&fmt=srv3", "en", "")
		fmt.Fprint(w, watchPageHTML(okPlayerJSON(tracks)))
	}
	_, yt := newFakeYouTube(t, f)

	segs, err := yt.Fetch(context.Background(), testVideoID, []string{"en"})
	require.NoError(t, err)
	assert.Equal(t, []transcript.RawSegment{
		{Text: "we're no strangers", Start: 0.16, Duration: 2.5},
		{Text: "to love", Start: 2.66, Duration: 1.9},
		{Text: "you know the rules", Start: 5.0, Duration: 3.25},
	}, segs)
}

func TestYouTubeFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		player  string
		langs   []string
		status  int
		wantErr error
	}{
		{
			name:    "video unavailable",
			player:  `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`,
			langs:   []string{"en"},
			wantErr: transcript.ErrVideoUnavailable,
		},
		{
			name:    "private video",
			player:  `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"This video is private"}}`,
			langs:   []string{"en"},
			wantErr: transcript.ErrVideoUnavailable,
		},
		{
			name:    "bot check",
			player:  `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm you're not a bot"}}`,
			langs:   []string{"en"},
			wantErr: transcript.ErrRequestFailed,
		},
		{
			name:    "no captions",
			player:  `{"playabilityStatus":{"status":"OK"}}`,
			langs:   []string{"en"},
			wantErr: transcript.ErrTranscriptsDisabled,
		},
		{
			name:    "language missing",
			player:  okPlayerJSON(trackJSON("http://unused/api/timedtext", "ru", "asr")),
			langs:   []string{"en", "de"},
			wantErr: transcript.ErrNoTranscript,
		},
		{
			name:    "potoken only track",
			player:  okPlayerJSON(trackJSON("http://unused/api/timedtext?lang=en&exp=xpe", "en", "")),
			langs:   []string{"en"},
			wantErr: transcript.ErrNoTranscript,
		},
		{
			name:    "upstream 503",
			status:  http.StatusServiceUnavailable,
			langs:   []string{"en"},
			wantErr: transcript.ErrRequestFailed,
		},
		{
			name:    "marker missing",
			player:  "",
			langs:   []string{"en"},
			wantErr: transcript.ErrRequestFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeYouTube{}
			f.watch = func(w http.ResponseWriter, _ *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
					return
				}
				if tt.player == "" {
					fmt.Fprint(w, "<html>consent</html>")
					return
				}
				fmt.Fprint(w, watchPageHTML(tt.player))
			}
			_, yt := newFakeYouTube(t, f)

			_, err := yt.Fetch(context.Background(), testVideoID, tt.langs)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestYouTubeFetchRetriesTransientStatus(t *testing.T) {
	f := &fakeYouTube{timedTextXML: srv3TimedText}
	f.watch = func(w http.ResponseWriter, r *http.Request) {
		if f.watchCalls.Load() == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, watchPageHTML(okPlayerJSON(trackJSON(serverBase(r)+"/api/timedtext?lang=de", "de", "asr"))))
	}
	_, yt := newFakeYouTube(t, f)

	segs, err := yt.Fetch(context.Background(), testVideoID, []string{"en", "de"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.watchCalls.Load())
	assert.Equal(t, []transcript.RawSegment{
		{Text: "hallo welt", Start: 1.2, Duration: 3.4},
		{Text: "tschüss", Start: 5.6, Duration: 2},
	}, segs)
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "u1", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "u2", LanguageCode: "de"},
		{BaseURL: "u3", LanguageCode: "en"},
		{BaseURL: "u4&exp=xpe", LanguageCode: "fr"},
	}
	tests := []struct {
		name   string
		langs  []string
		want   string
		wantOK bool
	}{
		{"manual preferred over generated", []string{"en"}, "u3", true},
		{"language order wins", []string{"de", "en"}, "u2", true},
		{"skips missing language", []string{"ja", "de"}, "u2", true},
		{"potoken track unusable", []string{"fr"}, "", false},
		{"no match", []string{"ko"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickTrack(tracks, tt.langs)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.BaseURL)
		})
	}

	t.Run("generated used when no manual", func(t *testing.T) {
		got, ok := pickTrack(tracks[:1], []string{"en"})
		require.True(t, ok)
		assert.Equal(t, "u1", got.BaseURL)
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};rest`, `{"a":1}`},
		{"nested", `{"a":{"b":{}}} trailing}`, `{"a":{"b":{}}}`},
		{"brace in string", `{"a":"}{"};`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"x\"}"};`, `{"a":"x\"}"}`},
		{"escaped backslash", `{"a":"x\\"};`, `{"a":"x\\"}`},
		{"not object", `[1,2]`, ""},
		{"unterminated", `{"a":1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractJSON([]byte(tt.in))))
		})
	}
}

func TestParseTimedTextEmpty(t *testing.T) {
	_, err := parseTimedText([]byte("  "))
	assert.Error(t, err)

	segs, err := parseTimedText([]byte(`<transcript></transcript>`))
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestPlayabilityError(t *testing.T) {
	assert.NoError(t, playabilityError(&playerResp{}))
}
