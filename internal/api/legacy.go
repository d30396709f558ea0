package api

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/smazurov/stripd/internal/light"
	"github.com/smazurov/stripd/ui"
)

// maxCommandBytes is the largest accepted control body. "W255,255,255,255"
// is 16 bytes; the rest leaves room for line endings.
const maxCommandBytes = 32

const (
	respOK            = "OK\r\n"
	respHardwareError = "Failed to update LED strip"
	respReadError     = "Failed to read request"
	respTimeout       = "Request timeout"
)

// readResponse is the /read body.
type readResponse struct {
	R      uint8 `json:"r"`
	G      uint8 `json:"g"`
	B      uint8 `json:"b"`
	W      uint8 `json:"w"`
	Level  uint8 `json:"level"`
	DutyR  uint8 `json:"duty_r"`
	DutyG  uint8 `json:"duty_g"`
	DutyB  uint8 `json:"duty_b"`
	DutyW  uint8 `json:"duty_w"`
	FreqHz int   `json:"freq_hz"`
}

// registerLegacyRoutes serves the plain-text protocol existing clients speak:
// GET /read, PUT /ctrl and PUT /level, plus the control page at "/".
func (s *Server) registerLegacyRoutes(cors CORSConfig) {
	wrap := func(h http.HandlerFunc) http.Handler {
		return CORSHandler(cors, LoggingHandler(h))
	}
	s.mux.Handle("GET /read", wrap(s.handleRead))
	s.mux.Handle("PUT /ctrl", wrap(s.handleCtrl))
	s.mux.Handle("PUT /level", wrap(s.handleLevel))

	page, err := ui.Handler()
	if err != nil {
		s.logger.Error("Control page unavailable", "error", err)
		return
	}
	s.mux.Handle("GET /{$}", LoggingHandler(page))
}

func (s *Server) handleRead(w http.ResponseWriter, _ *http.Request) {
	st := s.light.State()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(readResponse{
		R:      st.Color.R,
		G:      st.Color.G,
		B:      st.Color.B,
		W:      st.Color.W,
		Level:  st.Level,
		DutyR:  st.Duty.R,
		DutyG:  st.Duty.G,
		DutyB:  st.Duty.B,
		DutyW:  st.Duty.W,
		FreqHz: s.light.FrequencyHz(),
	})
}

func (s *Server) handleCtrl(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readCommand(w, r, light.ColorFormatHint)
	if !ok {
		return
	}
	color, err := light.ParseColorCommand(body)
	if err != nil {
		writeText(w, http.StatusBadRequest, light.ColorFormatHint)
		return
	}
	s.finish(w, s.light.SetColor(color))
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readCommand(w, r, light.LevelFormatHint)
	if !ok {
		return
	}
	level, err := light.ParseLevelCommand(body)
	if err != nil {
		writeText(w, http.StatusBadRequest, light.LevelFormatHint)
		return
	}
	s.finish(w, s.light.SetLevel(level))
}

// readCommand reads at most maxCommandBytes under the receive deadline. On
// failure it writes the response and returns false; the controller is never
// reached.
func (s *Server) readCommand(w http.ResponseWriter, r *http.Request, hint string) ([]byte, bool) {
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(time.Now().Add(s.options.RecvTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.logger.Debug("Failed to set read deadline", "error", err)
	}

	body, err := io.ReadAll(http.MaxBytesReader(connWriter(w), r.Body, maxCommandBytes))
	if err == nil {
		return body, true
	}

	var tooLarge *http.MaxBytesError
	var netErr net.Error
	switch {
	case errors.As(err, &tooLarge):
		writeText(w, http.StatusBadRequest, hint)
	case errors.Is(err, os.ErrDeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		s.logger.Warn("Timed out receiving request body", "path", r.URL.Path)
		writeText(w, http.StatusRequestTimeout, respTimeout)
	default:
		s.logger.Warn("Failed to receive request body", "path", r.URL.Path, "error", err)
		writeText(w, http.StatusInternalServerError, respReadError)
	}
	return nil, false
}

// connWriter unwraps middleware writers. MaxBytesReader only marks the
// connection for close when it is handed the server's own writer.
func connWriter(w http.ResponseWriter) http.ResponseWriter {
	for {
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return w
		}
		w = u.Unwrap()
	}
}

// finish reports a controller result. Hardware detail never reaches the client.
func (s *Server) finish(w http.ResponseWriter, err error) {
	if err != nil {
		writeText(w, http.StatusInternalServerError, respHardwareError)
		return
	}
	writeText(w, http.StatusOK, respOK)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
