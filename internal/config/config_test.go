package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yegors/tailwinds/internal/runway"
)

const baseConfig = `
red_keywords = ["TS", "FZRA"]

[server]
port = 8080

[station]
airport_code = "KPNE"
runways = ["06", "24", "15", "33"]
nearby = ["KPHL"]
timezone = "UTC"

[wx]
taf_hours = 4
radar = "KDIX"
`

const thresholdsConfig = `
[thresholds.student]
headwind = { caution = 10, max = 15 }
crosswind = { caution = 5, max = 8 }
ceiling = { caution = 4000, min = 3000 }
visibility = { caution = 7, min = 5 }

[thresholds.vfr]
headwind = { caution = 20, max = 25 }
crosswind = { caution = 10, max = 15 }
ceiling = { caution = 3000, min = 1000 }
visibility = { caution = 5, min = 3 }

[thresholds.ifr]
headwind = { caution = 25, max = 30 }
crosswind = { caution = 15, max = 20 }
ceiling = { caution = 1000, min = 500 }
visibility = { caution = 3, min = 1 }
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, baseConfig+thresholdsConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Station.AirportCode != "KPNE" || cfg.Weather.TafHours != 4 || cfg.Weather.Radar != "KDIX" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if diff := cmp.Diff([]string{"TS", "FZRA"}, cfg.RedKeywords); diff != "" {
		t.Fatalf("red keywords (-want +got):\n%s", diff)
	}
	// defaults
	if cfg.Weather.RefreshIntervalMinutes != 5 || cfg.Weather.APIBaseURL == "" || cfg.Logging.Format != "console" {
		t.Fatalf("defaults not applied: %+v", cfg.Weather)
	}

	tiers, err := cfg.TierThresholds()
	if err != nil {
		t.Fatalf("TierThresholds: %v", err)
	}
	want := runway.Thresholds{
		Headwind:   runway.WindLimit{Caution: 20, Max: 25},
		Crosswind:  runway.WindLimit{Caution: 10, Max: 15},
		Ceiling:    runway.FloorLimit{Caution: 3000, Min: 1000},
		Visibility: runway.FloorLimit{Caution: 5, Min: 3},
	}
	if diff := cmp.Diff(want, tiers[runway.VFR]); diff != "" {
		t.Fatalf("vfr thresholds (-want +got):\n%s", diff)
	}
}

func TestLoadRequiresEveryThreshold(t *testing.T) {
	incomplete := strings.Replace(thresholdsConfig, "visibility = { caution = 3, min = 1 }", "visibility = { caution = 3 }", 1)
	_, err := Load(writeConfig(t, baseConfig+incomplete))
	if !errors.Is(err, runway.ErrInvalidThresholds) {
		t.Fatalf("err = %v, want ErrInvalidThresholds", err)
	}
	if !strings.Contains(err.Error(), "thresholds.ifr.visibility.min") {
		t.Fatalf("error should name the missing key: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TAILWINDS_AIRPORT", "kphl")
	t.Setenv("TAILWINDS_RUNWAYS", "09R, 27L ,")
	t.Setenv("TAILWINDS_TAF_HOURS", "6")

	cfg, err := Load(writeConfig(t, baseConfig+thresholdsConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Station.AirportCode != "KPHL" || cfg.Weather.TafHours != 6 {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Station, cfg.Weather)
	}
	if diff := cmp.Diff([]string{"09R", "27L"}, cfg.Station.Runways); diff != "" {
		t.Fatalf("runways (-want +got):\n%s", diff)
	}

	t.Setenv("TAILWINDS_TAF_HOURS", "soon")
	if _, err := Load(writeConfig(t, baseConfig+thresholdsConfig)); err == nil {
		t.Fatalf("expected an error for a non-numeric horizon")
	}
}

func TestLoadStationFromCSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "airports.csv")
	csv := `"id","ident","type","name","latitude_deg","longitude_deg","elevation_ft"
1,"KPHL","large_airport","Philadelphia International",39.8719,-75.2411,36
2,"KPNE","small_airport","Northeast Philadelphia",40.0819,-75.0106,120
`
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	content := strings.Replace(baseConfig, `timezone = "UTC"`, `timezone = "UTC"
airports_db_path = "`+filepath.ToSlash(csvPath)+`"`, 1)

	cfg, err := Load(writeConfig(t, content+thresholdsConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Station.Latitude != 40.0819 || cfg.Station.Longitude != -75.0106 || cfg.Station.ElevationFeet != 120 {
		t.Fatalf("coordinates not loaded: %+v", cfg.Station)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no airport", func(c *Config) { c.Station.AirportCode = "" }},
		{"no runways", func(c *Config) { c.Station.Runways = nil }},
		{"bad runway", func(c *Config) { c.Station.Runways = []string{"40"} }},
		{"bad timezone", func(c *Config) { c.Station.Timezone = "Mars/Olympus" }},
		{"negative retries", func(c *Config) { c.Weather.MaxRetries = -1 }},
		{"unknown tier", func(c *Config) { c.Thresholds["expert"] = c.Thresholds["vfr"] }},
		{"inverted limits", func(c *Config) {
			th := c.Thresholds["student"]
			th.Headwind.Caution = 20
			c.Thresholds["student"] = th
		}},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, baseConfig+thresholdsConfig))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.edit(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected a validation error")
			}
		})
	}
}

func TestLoadWithFallbackMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := LoadWithFallback("nope.toml"); err == nil {
		t.Fatalf("expected an error when no config exists")
	}
}
