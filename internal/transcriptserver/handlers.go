package transcriptserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type transcriptResponse struct {
	Success    bool                   `json:"success"`
	Transcript *transcript.Transcript `json:"transcript"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: ServiceName})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	input, err := decodeURL(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	t, _, err := s.svc.Transcript(r.Context(), input)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transcriptResponse{Success: true, Transcript: t})
}

// decodeURL reads the url field of a JSON object body. Only an unreadable
// body or an absent field counts as missing; a present url that is null or
// not a string can never name a video.
func decodeURL(body io.Reader) (string, error) {
	var req map[string]any
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return "", transcript.ErrMissingURL
	}
	raw, ok := req["url"]
	if !ok {
		return "", transcript.ErrMissingURL
	}
	input, ok := raw.(string)
	if !ok {
		return "", transcript.ErrInvalidVideoID
	}
	return input, nil
}

// failure is the client-facing rendering of an error.
type failure struct {
	status  int
	code    string
	message string
}

// classify maps service errors to HTTP responses. Fetch failures keep the
// source's kind; anything else is an internal error carrying its text.
func classify(err error) failure {
	switch {
	case errors.Is(err, transcript.ErrMissingURL):
		return failure{http.StatusBadRequest, "Missing required field: url", ""}
	case errors.Is(err, transcript.ErrInvalidVideoID):
		return failure{http.StatusBadRequest, "Invalid YouTube URL or video ID", ""}
	}

	var fetchErr *transcript.FetchError
	if !errors.As(err, &fetchErr) {
		return failure{http.StatusInternalServerError, "Internal server error", err.Error()}
	}
	switch {
	case errors.Is(err, transcript.ErrTranscriptsDisabled):
		return failure{http.StatusForbidden, "Transcripts disabled",
			"The video owner has disabled transcripts for this video"}
	case errors.Is(err, transcript.ErrVideoUnavailable):
		return failure{http.StatusNotFound, "Video unavailable",
			"The video is private, deleted, or does not exist"}
	case errors.Is(err, transcript.ErrRequestFailed):
		return failure{http.StatusBadGateway, "YouTube request failed",
			"Failed to fetch data from YouTube. Please try again."}
	default:
		return failure{http.StatusNotFound, "No transcript available",
			"This video may not have captions/subtitles enabled"}
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	f := classify(err)
	if f.status >= http.StatusInternalServerError {
		s.logger.Error("transcript request failed", slog.Int("status", f.status), slog.Any("error", err))
	}
	s.writeJSON(w, f.status, errorResponse{Success: false, Error: f.code, Message: f.message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("write response failed", slog.Any("error", err))
	}
}
