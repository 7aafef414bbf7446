package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yegors/tailwinds/internal/metrics"
	"github.com/yegors/tailwinds/internal/physics"
	"github.com/yegors/tailwinds/internal/runway"
	"github.com/yegors/tailwinds/internal/wx"
	"github.com/yegors/tailwinds/pkg/logger"
)

// Fetcher retrieves undecoded report text for a station
type Fetcher interface {
	FetchRaw(ctx context.Context, station string) (*RawReport, error)
}

// Service fetches, decodes and rates the configured airport's weather
type Service struct {
	config  Config
	station Station
	fetcher Fetcher
	cache   *Cache
	logger  *logger.Logger
	now     func() time.Time

	// Service lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex

	// serialises rebuilds so concurrent requests share one fetch
	buildMu sync.Mutex
}

// NewService creates a new weather service
func NewService(config Config, station Station, fetcher Fetcher, log *logger.Logger) (*Service, error) {
	if err := station.Tiers.Validate(); err != nil {
		return nil, fmt.Errorf("invalid runway thresholds: %w", err)
	}
	for _, d := range station.Runways {
		if _, err := runway.Heading(d); err != nil {
			return nil, err
		}
	}
	if station.Location == nil {
		station.Location = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		config:  config,
		station: station,
		fetcher: fetcher,
		cache:   NewCache(time.Duration(config.CacheExpiryMinutes)*time.Minute, log),
		logger:  log.Named("weather-service"),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// SetClock replaces the time source, used by tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Reference returns the time reference used for decoding right now
func (s *Service) Reference() wx.Reference {
	return wx.NewReference(s.now(), s.station.Location)
}

// TafHours returns the configured forecast horizon
func (s *Service) TafHours() int {
	return s.config.TafHours
}

// Start begins the background refresh
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info("Starting weather service",
		logger.String("airport", s.station.Airport),
		logger.Strings("runways", s.station.Runways),
		logger.Int("refresh_interval_minutes", s.config.RefreshIntervalMinutes))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.backgroundRefresh()
	}()

	s.started = true
	return nil
}

// Stop gracefully shuts down the weather service
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info("Stopping weather service")
	s.cancel()
	s.wg.Wait()
	s.started = false
	s.logger.Info("Weather service stopped")
	return nil
}

// IsStarted returns whether the service is currently running
func (s *Service) IsStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// GetCacheStats returns cache statistics
func (s *Service) GetCacheStats() map[string]interface{} {
	return s.cache.GetStats(s.now())
}

// Report returns the cached report, rebuilding it when expired
func (s *Service) Report(ctx context.Context) (*Report, error) {
	if r := s.cache.Get(s.now()); r != nil {
		return r, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	// another caller may have rebuilt while we waited
	if r := s.cache.Get(s.now()); r != nil {
		return r, nil
	}
	r, err := s.refresh(ctx)
	if err != nil {
		if stale := s.cache.Latest(); stale != nil {
			s.logger.Warn("Serving stale weather report",
				logger.Time("last_updated", stale.LastUpdated),
				logger.Error(err))
			return stale, nil
		}
		return nil, err
	}
	return r, nil
}

// RefreshNow drops the cached report and rebuilds it
func (s *Service) RefreshNow(ctx context.Context) (*Report, error) {
	s.logger.Info("Manual weather refresh triggered")
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	s.cache.Invalidate()
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) (*Report, error) {
	start := time.Now()
	report, err := s.BuildReport(ctx)
	if err != nil {
		s.logger.Error("Failed to build weather report",
			logger.String("airport", s.station.Airport),
			logger.Error(err))
		return nil, err
	}
	s.cache.Set(report, s.now())

	s.logger.Info("Weather report built",
		logger.String("airport", s.station.Airport),
		logger.Int("runways", len(report.Runways)),
		logger.Bool("all_red", report.AllRed),
		logger.Duration("duration", time.Since(start)))
	return report, nil
}

// backgroundRefresh runs the periodic rebuild
func (s *Service) backgroundRefresh() {
	refreshInterval := time.Duration(s.config.RefreshIntervalMinutes) * time.Minute
	if refreshInterval < time.Minute {
		refreshInterval = 5 * time.Minute
	}
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	s.logger.Info("Background weather refresh started",
		logger.Duration("interval", refreshInterval))

	s.buildMu.Lock()
	_, _ = s.refresh(s.ctx)
	s.buildMu.Unlock()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Background weather refresh stopped")
			return
		case <-ticker.C:
			s.logger.Debug("Periodic weather refresh triggered")
			s.buildMu.Lock()
			_, _ = s.refresh(s.ctx)
			s.buildMu.Unlock()
		}
	}
}

// BuildReport fetches the home station and nearby stations, decodes their
// reports and rates every configured runway
func (s *Service) BuildReport(ctx context.Context) (*Report, error) {
	now := s.now()
	ref := wx.NewReference(now, s.station.Location)

	raw, err := s.fetcher.FetchRaw(ctx, s.station.Airport)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.station.Airport, err)
	}

	metar := wx.DecodeMetar(raw.Metar)
	report := &Report{
		Airport:         s.station.Airport,
		Weather:         Observation{Metar: &metar, Radar: s.radarURL()},
		UpdateFrequency: s.config.RefreshIntervalMinutes,
		LastUpdated:     now,
	}
	if raw.Taf != "" {
		taf := wx.DecodeTaf(raw.Taf, s.config.TafHours, ref)
		report.Weather.Taf = &taf
	}

	nearby, errs := s.fetchNearby(ctx, ref)
	report.Weather.NearbyTafs = nearby
	report.FetchErrors = errs

	ratings, err := runway.RateRunways(s.station.Runways, s.windReference(metar, now), s.station.Tiers)
	if err != nil {
		return nil, fmt.Errorf("rate runways: %w", err)
	}
	report.Runways = ratings
	for _, r := range ratings {
		for _, tier := range runway.Tiers {
			metrics.RatingsTotal.WithLabelValues(string(tier), string(r.Color(tier))).Inc()
		}
	}

	s.scanKeywords(report)
	return report, nil
}

// fetchNearby fetches every nearby station concurrently and decodes the
// TAFs; failures are reported, not fatal
func (s *Service) fetchNearby(ctx context.Context, ref wx.Reference) ([]*wx.Taf, []string) {
	if len(s.station.Nearby) == 0 {
		return nil, nil
	}

	type result struct {
		index int
		taf   *wx.Taf
		err   error
	}
	results := make(chan result, len(s.station.Nearby))

	for i, id := range s.station.Nearby {
		go func(i int, id string) {
			raw, err := s.fetcher.FetchRaw(ctx, id)
			if err != nil {
				results <- result{index: i, err: fmt.Errorf("%s: %w", id, err)}
				return
			}
			if raw.Taf == "" {
				results <- result{index: i}
				return
			}
			taf := wx.DecodeTaf(raw.Taf, s.config.TafHours, ref)
			results <- result{index: i, taf: &taf}
		}(i, id)
	}

	ordered := make([]*wx.Taf, len(s.station.Nearby))
	var errs []string
	for range s.station.Nearby {
		r := <-results
		if r.err != nil {
			s.logger.Warn("Failed to fetch nearby station", logger.Error(r.err))
			errs = append(errs, r.err.Error())
			continue
		}
		ordered[r.index] = r.taf
	}

	tafs := make([]*wx.Taf, 0, len(ordered))
	for _, t := range ordered {
		if t != nil {
			tafs = append(tafs, t)
		}
	}
	return tafs, errs
}

// windReference returns the METAR to rate with. When magnetic variation is
// enabled the true wind direction is converted to magnetic so it matches
// the runway designators.
func (s *Service) windReference(m wx.Metar, now time.Time) wx.Metar {
	if !s.station.ApplyMagneticVariation || m.Wind == nil || m.Wind.Variable {
		return m
	}
	variation, err := physics.CalculateMagneticVariation(s.station.Latitude, s.station.Longitude, float64(s.station.ElevationFeet), now)
	if err != nil {
		s.logger.Warn("Magnetic variation unavailable, rating with true wind", logger.Error(err))
		return m
	}
	wind := *m.Wind
	wind.Direction = physics.TrueToMagnetic(wind.Direction, variation)
	m.Wind = &wind
	return m
}

func (s *Service) scanKeywords(report *Report) {
	kw := s.config.RedKeywords
	obs := &report.Weather
	if obs.Metar != nil {
		obs.Keywords = ScanKeywords(obs.Metar.Raw, kw)
	}
	if obs.Taf != nil {
		obs.TafKeywords = ScanKeywords(obs.Taf.Raw, kw)
	}
	report.AllRed = len(obs.Keywords) > 0 || len(obs.TafKeywords) > 0
	for _, t := range obs.NearbyTafs {
		if len(ScanKeywords(t.Raw, kw)) > 0 {
			report.AllRed = true
		}
	}
}

func (s *Service) radarURL() string {
	if s.config.RadarSite == "" {
		return ""
	}
	return fmt.Sprintf("https://radar.weather.gov/ridge/standard/%s_loop.gif", s.config.RadarSite)
}
