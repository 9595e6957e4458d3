package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	globe "github.com/phanxgames/anomalyglobe"
)

// errorResponse is the envelope for all error responses.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
	Years  int    `json:"years"`
}

type yearsResponse struct {
	Years []int `json:"years"`
	First int   `json:"first,omitempty"`
	Last  int   `json:"last,omitempty"`
}

type samplesResponse struct {
	Year    int                   `json:"year"`
	Samples []globe.AnomalySample `json:"samples"`
}

// writeJSON writes data with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, `{"error":{"code":"internal","message":"failed to marshal response"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: msg}})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Years: s.Dataset.Len()})
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	resp := yearsResponse{Years: s.Dataset.Years()}
	if resp.Years == nil {
		resp.Years = []int{}
	}
	if first, last, ok := s.Dataset.Range(); ok {
		resp.First, resp.Last = first, last
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}
	samples := s.Dataset.Samples(year)
	if samples == nil {
		writeError(w, http.StatusNotFound, "year_not_found", fmt.Sprintf("no data for year %d", year))
		return
	}
	writeJSON(w, http.StatusOK, samplesResponse{Year: year, Samples: samples})
}

// handleHeatmap renders the year's heatmap as a PNG. Years without samples
// are 404s; the globe shows no overlay for them either.
func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}
	width := DefaultWidth
	if q := r.URL.Query().Get("width"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < MinWidth || n > MaxWidth || n%2 != 0 {
			writeError(w, http.StatusBadRequest, "invalid_width",
				fmt.Sprintf("width must be an even integer in [%d, %d]", MinWidth, MaxWidth))
			return
		}
		width = n
	}

	samples := s.Dataset.Samples(year)
	if len(samples) == 0 {
		writeError(w, http.StatusNotFound, "year_not_found", fmt.Sprintf("no data for year %d", year))
		return
	}

	key := fmt.Sprintf("%d/%d", year, width)
	data, hit, err := s.cache.get(key, func() ([]byte, error) {
		synth := globe.NewSynthesizer(width, globe.WithRamp(s.ramp))
		var buf bytes.Buffer
		if err := globe.EncodePNG(&buf, synth.Synthesize(samples)); err != nil {
			return nil, err
		}
		s.Logger.Debug("heatmap rendered", slog.Int("year", year), slog.Int("width", width), slog.Int("bytes", buf.Len()))
		return buf.Bytes(), nil
	})
	if err != nil {
		s.Logger.Error("heatmap render failed", slog.Int("year", year), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "render_failed", "failed to render heatmap")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_year", fmt.Sprintf("year %q is not an integer", raw))
		return 0, false
	}
	return year, true
}
