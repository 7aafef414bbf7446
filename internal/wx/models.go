// Package wx decodes US-flavour METAR observations and TAF bulletins.
//
// Decoding never fails: tokens that cannot be recognised are skipped and the
// corresponding fields are left nil, so "no data" stays distinguishable from
// "calm" or "zero".
package wx

import "time"

// Coverage is a cloud layer amount
type Coverage string

const (
	CoverageFew       Coverage = "FEW"
	CoverageScattered Coverage = "SCT"
	CoverageBroken    Coverage = "BKN"
	CoverageOvercast  Coverage = "OVC"
)

// UnlimitedCeiling is used when no layer forms a ceiling
const UnlimitedCeiling = 999999

// WindReport is a decoded surface wind group
type WindReport struct {
	Direction int  `json:"dir"`      // degrees true, meaningless when Variable is set
	Variable  bool `json:"variable"` // VRB
	Speed     int  `json:"speed"`    // knots
	Gust      *int `json:"gust,omitempty"`
}

// GustSpeed returns the gust peak or 0 when none was reported
func (w *WindReport) GustSpeed() int {
	if w == nil || w.Gust == nil {
		return 0
	}
	return *w.Gust
}

// Visibility is a prevailing visibility in statute miles
type Visibility struct {
	StatuteMiles float64 `json:"miles"`
	AtLeast      bool    `json:"at_least,omitempty"`  // P6SM
	LessThan     bool    `json:"less_than,omitempty"` // M1/4SM
}

// CloudLayer is one reported sky condition layer
type CloudLayer struct {
	Coverage Coverage `json:"coverage"`
	Base     int      `json:"base"`           // feet AGL
	Type     string   `json:"type,omitempty"` // CB or TCU
}

// Ceiling returns the base of the lowest layer that is not FEW, or
// UnlimitedCeiling when there is none.
func Ceiling(layers []CloudLayer) int {
	ceiling := UnlimitedCeiling
	for _, l := range layers {
		if l.Coverage == CoverageFew {
			continue
		}
		if l.Base < ceiling {
			ceiling = l.Base
		}
	}
	return ceiling
}

// Metar is a decoded METAR observation
type Metar struct {
	Raw         string       `json:"raw"`
	Station     string       `json:"station,omitempty"`
	Wind        *WindReport  `json:"wind,omitempty"`
	Visibility  *Visibility  `json:"vis,omitempty"`
	Clouds      []CloudLayer `json:"clouds"`
	Weather     string       `json:"weather,omitempty"`
	Temperature *float64     `json:"temp_c,omitempty"`
	Dewpoint    *float64     `json:"dewpoint_c,omitempty"`
	Altimeter   *float64     `json:"altimeter_inhg,omitempty"`
}

// PeriodKind identifies how a TAF line starts
type PeriodKind string

const (
	PeriodBase  PeriodKind = "BASE" // header line
	PeriodFrom  PeriodKind = "FM"
	PeriodTempo PeriodKind = "TEMPO"
	PeriodProb  PeriodKind = "PROB"
	PeriodBecmg PeriodKind = "BECMG"
	PeriodOther PeriodKind = "OTHER" // continuation or unrecognised line
)

// ForecastPeriod is one line of a TAF bulletin. Every weather attribute is
// optional since a period may only amend a subset.
type ForecastPeriod struct {
	Kind        PeriodKind   `json:"kind"`
	From        *time.Time   `json:"from,omitempty"`
	To          *time.Time   `json:"to,omitempty"`
	TimeLocal   string       `json:"time_local,omitempty"`
	Probability int          `json:"probability,omitempty"`
	ProbStart   string       `json:"prob_start,omitempty"`
	ProbEnd     string       `json:"prob_end,omitempty"`
	Wind        *WindReport  `json:"wind,omitempty"`
	Visibility  *Visibility  `json:"vis,omitempty"`
	Clouds      []CloudLayer `json:"clouds,omitempty"`
	Weather     string       `json:"weather,omitempty"`
	Raw         string       `json:"raw"`
}

// Taf is a decoded terminal aerodrome forecast
type Taf struct {
	Station   string           `json:"station,omitempty"`
	Issued    *time.Time       `json:"issued,omitempty"`
	ValidFrom *time.Time       `json:"valid_from,omitempty"`
	ValidTo   *time.Time       `json:"valid_to,omitempty"`
	Periods   []ForecastPeriod `json:"periods"`
	Raw       string           `json:"raw"`
	Until     string           `json:"until,omitempty"` // local time of the first period past the horizon
}
