package transcriptserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// TranscriptInput is the youtube_transcript tool input.
type TranscriptInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL (watch, embed, youtu.be or /v/) or 11-character video ID"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the caption transcript of a YouTube video. Returns full text, per-segment offsets in milliseconds and 2-minute sections with M:SS timestamps. Tries English first, then de, es, fr, pt, hi, ja, ko.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranscriptInput) (*mcp.CallToolResult, transcript.Transcript, error) {
		engine.IncrMCPCalls()
		if input.URL == "" {
			return nil, transcript.Transcript{}, transcript.ErrMissingURL
		}
		t, _, err := s.svc.Transcript(ctx, input.URL)
		if err != nil {
			f := classify(err)
			if f.message == "" {
				return nil, transcript.Transcript{}, errors.New(f.code)
			}
			return nil, transcript.Transcript{}, fmt.Errorf("%s: %s", f.code, f.message)
		}
		return nil, *t, nil
	})
}
