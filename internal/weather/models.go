package weather

import (
	"time"

	"github.com/yegors/tailwinds/internal/runway"
	"github.com/yegors/tailwinds/internal/wx"
)

// Observation bundles the decoded home-station weather with its alerts
type Observation struct {
	Metar       *wx.Metar `json:"metar,omitempty"`
	Taf         *wx.Taf   `json:"taf,omitempty"`
	NearbyTafs  []*wx.Taf `json:"nearby_tafs,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	TafKeywords []string  `json:"taf_keywords,omitempty"`
	Radar       string    `json:"radar,omitempty"`
}

// Report is what the API serves for the configured airport
type Report struct {
	Airport         string          `json:"airport"`
	Weather         Observation     `json:"weather"`
	Runways         []runway.Rating `json:"runways"`
	AllRed          bool            `json:"allRed"`
	UpdateFrequency int             `json:"update_frequency"`
	LastUpdated     time.Time       `json:"last_updated"`
	FetchErrors     []string        `json:"fetch_errors,omitempty"`
}

// Config is the weather service configuration
type Config struct {
	APIBaseURL             string
	RequestTimeoutSeconds  int
	MaxRetries             int
	RateLimitPerSecond     float64
	RateLimitBurst         int
	RefreshIntervalMinutes int
	CacheExpiryMinutes     int
	TafHours               int
	RadarSite              string
	RedKeywords            []string
}

// DefaultConfig returns the default weather configuration
func DefaultConfig() Config {
	return Config{
		APIBaseURL:             "https://aviationweather.gov/api/data",
		RequestTimeoutSeconds:  10,
		MaxRetries:             2,
		RateLimitPerSecond:     2,
		RateLimitBurst:         4,
		RefreshIntervalMinutes: 5,
		CacheExpiryMinutes:     5,
		TafHours:               3,
	}
}

// Station describes the home airport and what to rate there
type Station struct {
	Airport                string
	Runways                []string
	Nearby                 []string
	Location               *time.Location
	Tiers                  runway.TierThresholds
	Latitude               float64
	Longitude              float64
	ElevationFeet          int
	ApplyMagneticVariation bool
}
