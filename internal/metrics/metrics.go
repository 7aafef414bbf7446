package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailwinds_weather_fetch_total",
			Help: "Weather text fetches by station and result.",
		},
		[]string{"station", "result"},
	)

	RatingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailwinds_runway_ratings_total",
			Help: "Runway ratings produced by tier and color.",
		},
		[]string{"tier", "color"},
	)

	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailwinds_http_requests_total",
			Help: "Total requests by route and method.",
		},
		[]string{"route", "method"},
	)
)

func init() {
	prometheus.MustRegister(FetchTotal, RatingsTotal, RequestCounter)
}
