package engine

import (
	"net/http"
	"time"
)

// Config holds all service configuration, built once in main and passed by
// reference to the sources and the HTTP server.
type Config struct {
	Port              string
	LogLevel          string
	FetchTimeout      time.Duration
	YouTubeBaseURL    string
	YouTubeRPS        float64
	TLSFingerprint    bool   // fetch the watch page through BrowserClient
	WebshareAPIKey    string // proxy pool for BrowserClient; empty = direct
	PrimaryLanguages  []string
	FallbackLanguages []string
	SupadataAPIKey    string
	SupadataBaseURL   string
	HTTPClient        *http.Client
	BrowserClient     *BrowserClient // nil = plain net/http for the watch page
}

// Default language preferences: English first, then a broader ordered list.
var (
	DefaultPrimaryLanguages  = []string{"en"}
	DefaultFallbackLanguages = []string{"en", "de", "es", "fr", "pt", "hi", "ja", "ko"}
)

// LanguageAttempts returns the ordered language lists tried per video.
// Empty lists are skipped.
func (c *Config) LanguageAttempts() [][]string {
	var attempts [][]string
	for _, langs := range [][]string{c.PrimaryLanguages, c.FallbackLanguages} {
		if len(langs) > 0 {
			attempts = append(attempts, langs)
		}
	}
	if len(attempts) == 0 {
		attempts = [][]string{DefaultPrimaryLanguages, DefaultFallbackLanguages}
	}
	return attempts
}

// Client returns the configured HTTP client or http.DefaultClient.
func (c *Config) Client() *http.Client {
	if c == nil || c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}
