package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/yegors/tailwinds/internal/runway"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server      ServerConfig                 `toml:"server"`       // HTTP server settings
	Logging     LoggingConfig                `toml:"logging"`      // Application logging settings
	Station     StationConfig                `toml:"station"`      // Airport and runway settings
	Weather     WeatherConfig                `toml:"wx"`           // Weather data fetching and caching settings
	Thresholds  map[string]runway.Thresholds `toml:"thresholds"`   // Per-tier rating thresholds keyed by tier name
	RedKeywords []string                     `toml:"red_keywords"` // Weather codes that turn every runway red
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // Primary HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // Origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Keep-alive idle timeout
	StaticFilesDir     string   `toml:"static_files_dir"`      // Directory to serve the UI bundle from
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StationConfig contains the home airport configuration
type StationConfig struct {
	Latitude               float64  `toml:"latitude"`                 // Decimal degrees, or derived from airports_db_path
	Longitude              float64  `toml:"longitude"`                // Decimal degrees, or derived from airports_db_path
	ElevationFeet          int      `toml:"elevation_feet"`           // Field elevation, or derived from airports_db_path
	AirportCode            string   `toml:"airport_code"`             // ICAO code of the airport (e.g., "KPNE")
	Runways                []string `toml:"runways"`                  // Runway ends to rate (e.g., ["06", "24", "15", "33"])
	Nearby                 []string `toml:"nearby"`                   // Nearby stations whose TAFs are shown
	Timezone               string   `toml:"timezone"`                 // IANA zone for local clock strings (default: host local)
	AirportsDBPath         string   `toml:"airports_db_path"`         // Optional OurAirports CSV used to fill coordinates
	ApplyMagneticVariation bool     `toml:"apply_magnetic_variation"` // Convert true wind to magnetic before rating
}

// WeatherConfig contains weather data fetching and caching configuration
type WeatherConfig struct {
	RefreshIntervalMinutes int     `toml:"refresh_interval_minutes"` // Weather data refresh interval in minutes
	APIBaseURL             string  `toml:"api_base_url"`             // Base URL for the aviation weather API
	RequestTimeoutSeconds  int     `toml:"request_timeout_seconds"`  // HTTP request timeout in seconds
	MaxRetries             int     `toml:"max_retries"`              // Maximum number of retry attempts for failed requests
	RateLimitPerSecond     float64 `toml:"rate_limit_per_second"`    // Upstream request rate
	RateLimitBurst         int     `toml:"rate_limit_burst"`         // Upstream request burst
	CacheExpiryMinutes     int     `toml:"cache_expiry_minutes"`     // How long a built report is served before rebuilding
	TafHours               int     `toml:"taf_hours"`                // Forecast horizon in hours
	Radar                  string  `toml:"radar"`                    // NWS radar site id for the loop image (e.g., "KDIX")
}

// threshold keys every tier must define
var thresholdKeys = [][2]string{
	{"headwind", "max"}, {"headwind", "caution"},
	{"crosswind", "max"}, {"crosswind", "caution"},
	{"ceiling", "min"}, {"ceiling", "caution"},
	{"visibility", "min"}, {"visibility", "caution"},
}

// Load reads the configuration from a TOML file, then applies .env and
// environment overrides
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Every tier must spell out all of its thresholds; a zero value is not
	// a usable default
	for _, tier := range runway.Tiers {
		for _, key := range thresholdKeys {
			if !md.IsDefined("thresholds", string(tier), key[0], key[1]) {
				return nil, fmt.Errorf("%w: thresholds.%s.%s.%s is not set", runway.ErrInvalidThresholds, tier, key[0], key[1])
			}
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if config.Station.AirportsDBPath != "" {
		if err := config.loadStationFromCSV(); err != nil {
			return nil, fmt.Errorf("failed to load station details from CSV: %w", err)
		}
	}

	return &config, nil
}

// applyEnv overrides file values with TAILWINDS_* environment variables
func (c *Config) applyEnv() error {
	if v := os.Getenv("TAILWINDS_AIRPORT"); v != "" {
		c.Station.AirportCode = strings.ToUpper(strings.TrimSpace(v))
	}
	if v := os.Getenv("TAILWINDS_RUNWAYS"); v != "" {
		c.Station.Runways = splitList(v)
	}
	if v := os.Getenv("TAILWINDS_NEARBY"); v != "" {
		c.Station.Nearby = splitList(v)
	}
	if v := os.Getenv("TAILWINDS_TAF_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TAILWINDS_TAF_HOURS %q: %w", v, err)
		}
		c.Weather.TafHours = n
	}
	if v := os.Getenv("TAILWINDS_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TAILWINDS_PORT %q: %w", v, err)
		}
		c.Server.Port = n
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadStationFromCSV fills the station coordinates from an OurAirports CSV
func (c *Config) loadStationFromCSV() error {
	if c.Station.AirportCode == "" {
		return fmt.Errorf("airport_code is required")
	}

	file, err := os.Open(c.Station.AirportsDBPath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		return err
	}

	records, err := reader.ReadAll()
	if err != nil {
		return err
	}

	for _, record := range records {
		// ident is column 1, then lat, lon, elevation at 4..6
		if len(record) < 7 || record[1] != c.Station.AirportCode {
			continue
		}
		lat, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude in CSV for %s: %w", c.Station.AirportCode, err)
		}
		lon, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude in CSV for %s: %w", c.Station.AirportCode, err)
		}
		c.Station.Latitude = lat
		c.Station.Longitude = lon
		if record[6] != "" {
			if elev, err := strconv.ParseFloat(record[6], 64); err == nil {
				c.Station.ElevationFeet = int(elev)
			}
		}
		return nil
	}

	return fmt.Errorf("airport code %s not found in %s", c.Station.AirportCode, c.Station.AirportsDBPath)
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate applies defaults and checks every section
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.StaticFilesDir == "" {
		c.Server.StaticFilesDir = "www"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Format {
	case "":
		c.Logging.Format = "console"
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s (must be json or console)", c.Logging.Format)
	}

	if err := c.ValidateStation(); err != nil {
		return err
	}
	if err := c.ValidateWeather(); err != nil {
		return err
	}
	if _, err := c.TierThresholds(); err != nil {
		return err
	}
	return nil
}

// ValidateStation validates the station configuration
func (c *Config) ValidateStation() error {
	if c.Station.AirportCode == "" {
		return fmt.Errorf("station airport_code is required")
	}
	if len(c.Station.Runways) == 0 {
		return fmt.Errorf("station runways must list at least one runway")
	}
	for _, r := range c.Station.Runways {
		if _, err := runway.Heading(r); err != nil {
			return fmt.Errorf("station runways: %w", err)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Station.Latitude < -90 || c.Station.Latitude > 90 {
		return fmt.Errorf("invalid station latitude: %f", c.Station.Latitude)
	}
	if c.Station.Longitude < -180 || c.Station.Longitude > 180 {
		return fmt.Errorf("invalid station longitude: %f", c.Station.Longitude)
	}
	if c.Station.ElevationFeet < -2000 || c.Station.ElevationFeet > 30000 {
		return fmt.Errorf("station elevation out of typical range: %d ft", c.Station.ElevationFeet)
	}
	if c.Station.ApplyMagneticVariation && c.Station.Latitude == 0 && c.Station.Longitude == 0 {
		return fmt.Errorf("apply_magnetic_variation needs station coordinates")
	}
	return nil
}

// ValidateWeather validates the weather configuration and fills defaults
func (c *Config) ValidateWeather() error {
	if c.Weather.APIBaseURL == "" {
		c.Weather.APIBaseURL = "https://aviationweather.gov/api/data"
	}
	if c.Weather.RefreshIntervalMinutes == 0 {
		c.Weather.RefreshIntervalMinutes = 5
	}
	if c.Weather.CacheExpiryMinutes == 0 {
		c.Weather.CacheExpiryMinutes = c.Weather.RefreshIntervalMinutes
	}
	if c.Weather.RequestTimeoutSeconds == 0 {
		c.Weather.RequestTimeoutSeconds = 10
	}
	if c.Weather.TafHours == 0 {
		c.Weather.TafHours = 3
	}
	if c.Weather.RateLimitPerSecond == 0 {
		c.Weather.RateLimitPerSecond = 2
	}
	if c.Weather.RateLimitBurst == 0 {
		c.Weather.RateLimitBurst = 4
	}

	if c.Weather.RefreshIntervalMinutes < 0 {
		return fmt.Errorf("weather refresh_interval_minutes must be greater than 0: %d", c.Weather.RefreshIntervalMinutes)
	}
	if c.Weather.CacheExpiryMinutes < 0 {
		return fmt.Errorf("weather cache_expiry_minutes must be greater than 0: %d", c.Weather.CacheExpiryMinutes)
	}
	if c.Weather.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("weather request_timeout_seconds must be greater than 0: %d", c.Weather.RequestTimeoutSeconds)
	}
	if c.Weather.MaxRetries < 0 {
		return fmt.Errorf("weather max_retries must be 0 or greater: %d", c.Weather.MaxRetries)
	}
	if c.Weather.TafHours < 0 {
		return fmt.Errorf("weather taf_hours must be 0 or greater: %d", c.Weather.TafHours)
	}
	if c.Weather.RateLimitPerSecond < 0 || c.Weather.RateLimitBurst < 0 {
		return fmt.Errorf("weather rate limit must be positive")
	}
	return nil
}

// TierThresholds converts the thresholds section into classifier input
func (c *Config) TierThresholds() (runway.TierThresholds, error) {
	tt := make(runway.TierThresholds, len(runway.Tiers))
	for name, t := range c.Thresholds {
		tier := runway.Tier(strings.ToLower(name))
		switch tier {
		case runway.Student, runway.VFR, runway.IFR:
			tt[tier] = t
		default:
			return nil, fmt.Errorf("unknown threshold tier: %s", name)
		}
	}
	if err := tt.Validate(); err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}
	return tt, nil
}

// Location resolves the configured display timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Station.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Station.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid station timezone %q: %w", c.Station.Timezone, err)
	}
	return loc, nil
}
