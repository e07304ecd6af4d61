// go_transcript — YouTube transcript microservice.
//
// Accepts a YouTube URL or video ID, fetches the caption track and returns it
// as full text, millisecond segments and 2-minute sections. Serves a JSON REST
// API (POST /transcript, GET /health, GET /metrics) and an MCP endpoint (/mcp).
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/anatolykoptev/go_transcript/internal/transcriptserver"
)

var version = "dev"

func main() {
	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.TLSFingerprint {
		bc, err := newBrowserClient(cfg)
		if err != nil {
			slog.Warn("stealth client init failed, using net/http", slog.Any("error", err))
		} else {
			cfg.BrowserClient = bc
			slog.Info("stealth browser client initialized")
		}
	}

	fetchers := []transcript.Fetcher{sources.NewYouTube(cfg)}
	if sd := sources.NewSupadata(cfg); sd != nil {
		fetchers = append(fetchers, sd)
		slog.Info("supadata fallback enabled")
	}
	svc := transcript.NewService(sources.Chain(fetchers...), cfg.LanguageAttempts(), logger)

	slog.Info("starting go_transcript",
		slog.String("version", version),
		slog.String("port", cfg.Port),
		slog.Int("sources", len(fetchers)),
		slog.Bool("tls_fingerprint", cfg.BrowserClient != nil),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := transcriptserver.New(cfg, svc, logger, version)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// newBrowserClient builds the Chrome-fingerprinted client, routed through a
// Webshare proxy pool when a key is configured. YouTube answers datacenter
// addresses with a bot check; residential proxies get the real watch page.
func newBrowserClient(cfg *engine.Config) (*engine.BrowserClient, error) {
	timeout := int(cfg.FetchTimeout / time.Second)
	if timeout <= 0 {
		timeout = 15
	}
	opts := []stealth.ClientOption{stealth.WithTimeout(timeout)}

	if cfg.WebshareAPIKey != "" {
		pool, err := proxypool.NewWebshare(cfg.WebshareAPIKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}
	return stealth.NewClient(opts...)
}

func loadConfig() *engine.Config {
	fetchTimeout := env.Duration("FETCH_TIMEOUT", 20*time.Second)
	return &engine.Config{
		Port:              env.Str("PORT", "3006"),
		LogLevel:          env.Str("LOG_LEVEL", "info"),
		FetchTimeout:      fetchTimeout,
		YouTubeBaseURL:    env.Str("YOUTUBE_BASE_URL", "https://www.youtube.com"),
		YouTubeRPS:        env.Float("YOUTUBE_RPS", 5),
		TLSFingerprint:    env.Str("YOUTUBE_TLS_FINGERPRINT", "") == "true",
		WebshareAPIKey:    env.Str("WEBSHARE_API_KEY", ""),
		PrimaryLanguages:  env.List("PRIMARY_LANGUAGES", "en"),
		FallbackLanguages: env.List("FALLBACK_LANGUAGES", "en,de,es,fr,pt,hi,ja,ko"),
		SupadataAPIKey:    env.Str("SUPADATA_API_KEY", ""),
		SupadataBaseURL:   env.Str("SUPADATA_BASE_URL", "https://api.supadata.ai"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
