package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/yegors/tailwinds/internal/config"
	"github.com/yegors/tailwinds/internal/weather"
	"github.com/yegors/tailwinds/internal/wx"
	"github.com/yegors/tailwinds/pkg/logger"
)

// maxBulletinBytes caps a posted TAF bulletin
const maxBulletinBytes = 64 << 10

// ReportService is the part of the weather service the API needs
type ReportService interface {
	Report(ctx context.Context) (*weather.Report, error)
	RefreshNow(ctx context.Context) (*weather.Report, error)
	Reference() wx.Reference
	TafHours() int
	GetCacheStats() map[string]interface{}
	IsStarted() bool
}

// Handler contains the API handlers
type Handler struct {
	weatherService ReportService
	config         *config.Config
	logger         *logger.Logger
	startedAt      time.Time
}

// NewHandler creates a new API handler
func NewHandler(weatherService ReportService, config *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		weatherService: weatherService,
		config:         config,
		logger:         log.Named("api-handler"),
		startedAt:      time.Now(),
	}
}

// GetWeather returns the rated runways and decoded weather for the airport
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	report, err := h.weatherService.Report(r.Context())
	if err != nil {
		h.logger.Error("Failed to get weather report", logger.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// RefreshWeather rebuilds the report immediately
func (h *Handler) RefreshWeather(w http.ResponseWriter, r *http.Request) {
	report, err := h.weatherService.RefreshNow(r.Context())
	if err != nil {
		h.logger.Error("Manual refresh failed", logger.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// DecodeMetar decodes the METAR given in the raw query parameter
func (h *Handler) DecodeMetar(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("raw")
	if raw == "" {
		writeError(w, http.StatusBadRequest, errors.New("raw query parameter is required"))
		return
	}
	WriteJSON(w, http.StatusOK, wx.DecodeMetar(raw))
}

// DecodeTaf decodes the TAF bulletin posted as the request body
func (h *Handler) DecodeTaf(w http.ResponseWriter, r *http.Request) {
	hours := h.weatherService.TafHours()
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("hours must be a non-negative integer"))
			return
		}
		hours = n
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBulletinBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("bulletin exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("request body must contain a TAF bulletin"))
		return
	}

	WriteJSON(w, http.StatusOK, wx.DecodeTaf(string(body), hours, h.weatherService.Reference()))
}

// GetConfig returns the public part of the configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, struct {
		Airport     string      `json:"airport"`
		Runways     []string    `json:"runways"`
		Nearby      []string    `json:"nearby"`
		TafHours    int         `json:"taf_hours"`
		Thresholds  interface{} `json:"thresholds"`
		RedKeywords []string    `json:"red_keywords"`
	}{
		Airport:     h.config.Station.AirportCode,
		Runways:     h.config.Station.Runways,
		Nearby:      h.config.Station.Nearby,
		TafHours:    h.weatherService.TafHours(),
		Thresholds:  h.config.Thresholds,
		RedKeywords: h.config.RedKeywords,
	})
}

// Health reports liveness and cache state
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"started": h.weatherService.IsStarted(),
		"cache":   h.weatherService.GetCacheStats(),
	})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, map[string]string{"error": err.Error()})
}
