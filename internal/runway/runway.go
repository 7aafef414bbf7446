package runway

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yegors/tailwinds/internal/wx"
)

// Rating is the per-tier rating of one runway end
type Rating struct {
	Runway        string `json:"runway"`
	Heading       int    `json:"heading"`
	Headwind      int    `json:"headwind"`
	Crosswind     int    `json:"crosswind"`
	GustHeadwind  int    `json:"gust_headwind"`
	GustCrosswind int    `json:"gust_crosswind"`
	Student       Color  `json:"student"`
	VFR           Color  `json:"vfr"`
	IFR           Color  `json:"ifr"`
}

// Color returns the rating for a tier
func (r Rating) Color(t Tier) Color {
	switch t {
	case Student:
		return r.Student
	case VFR:
		return r.VFR
	case IFR:
		return r.IFR
	}
	return ""
}

// Heading converts a designator such as "27" or "09L" to degrees
func Heading(designator string) (int, error) {
	digits := designator
	if i := strings.IndexFunc(designator, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		digits = designator[:i]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 36 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRunway, designator)
	}
	return n * 10, nil
}

// ClassifyRunway rates one runway end for every tier. ok is false when the
// sustained headwind component is negative: that end is not the one to use
// for this wind and the reciprocal end should be rated instead.
func ClassifyRunway(designator string, m wx.Metar, tiers TierThresholds) (rating Rating, ok bool, err error) {
	if err := tiers.Validate(); err != nil {
		return Rating{}, false, err
	}
	heading, err := Heading(designator)
	if err != nil {
		return Rating{}, false, err
	}
	rating, ok = classifyHeading(designator, heading, m, tiers)
	return rating, ok, nil
}

func classifyHeading(designator string, heading int, m wx.Metar, tiers TierThresholds) (Rating, bool) {
	var sustained, gust Components
	if w := m.Wind; w != nil {
		sustained = WindComponents(heading, w.Direction, w.Speed, w.Variable)
		gust = WindComponents(heading, w.Direction, w.GustSpeed(), w.Variable)
	}
	if sustained.Headwind < 0 {
		return Rating{}, false
	}

	c := Conditions{
		Headwind:      sustained.Headwind,
		Crosswind:     sustained.Crosswind,
		GustHeadwind:  gust.Headwind,
		GustCrosswind: gust.Crosswind,
		Ceiling:       wx.Ceiling(m.Clouds),
	}
	// Missing visibility is rated as zero, never as unlimited
	if m.Visibility != nil {
		c.Visibility = m.Visibility.StatuteMiles
	}

	return Rating{
		Runway:        designator,
		Heading:       heading,
		Headwind:      sustained.Headwind,
		Crosswind:     sustained.Crosswind,
		GustHeadwind:  gust.Headwind,
		GustCrosswind: gust.Crosswind,
		Student:       Classify(c, tiers[Student]),
		VFR:           Classify(c, tiers[VFR]),
		IFR:           Classify(c, tiers[IFR]),
	}, true
}

// RateRunways rates every designator, drops excluded ends and sorts the
// rest by headwind, strongest first.
func RateRunways(designators []string, m wx.Metar, tiers TierThresholds) ([]Rating, error) {
	if err := tiers.Validate(); err != nil {
		return nil, err
	}
	ratings := make([]Rating, 0, len(designators))
	for _, d := range designators {
		heading, err := Heading(d)
		if err != nil {
			return nil, err
		}
		if r, ok := classifyHeading(d, heading, m, tiers); ok {
			ratings = append(ratings, r)
		}
	}
	sort.SliceStable(ratings, func(i, j int) bool {
		return ratings[i].Headwind > ratings[j].Headwind
	})
	return ratings, nil
}
