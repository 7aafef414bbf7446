package runway

import (
	"errors"
	"fmt"
)

// Color is a traffic-light rating
type Color string

const (
	Green  Color = "green"
	Yellow Color = "yellow"
	Red    Color = "red"
)

// Tier is a pilot proficiency category
type Tier string

const (
	Student Tier = "student"
	VFR     Tier = "vfr"
	IFR     Tier = "ifr"
)

// Tiers lists every tier in rating order
var Tiers = []Tier{Student, VFR, IFR}

var (
	ErrInvalidThresholds = errors.New("invalid thresholds")
	ErrMissingTier       = errors.New("missing tier thresholds")
	ErrInvalidRunway     = errors.New("invalid runway designator")
)

// WindLimit bounds a wind component: above Caution is yellow, above Max is red
type WindLimit struct {
	Caution float64 `toml:"caution" json:"caution"`
	Max     float64 `toml:"max" json:"max"`
}

// FloorLimit bounds ceiling or visibility from below: under Caution is
// yellow, under Min is red
type FloorLimit struct {
	Caution float64 `toml:"caution" json:"caution"`
	Min     float64 `toml:"min" json:"min"`
}

// Thresholds is the complete threshold set for one tier
type Thresholds struct {
	Headwind   WindLimit  `toml:"headwind" json:"headwind"`
	Crosswind  WindLimit  `toml:"crosswind" json:"crosswind"`
	Ceiling    FloorLimit `toml:"ceiling" json:"ceiling"`       // feet
	Visibility FloorLimit `toml:"visibility" json:"visibility"` // statute miles
}

// Validate checks that the caution thresholds sit on the safe side of the
// hard limits
func (t Thresholds) Validate() error {
	for name, l := range map[string]WindLimit{"headwind": t.Headwind, "crosswind": t.Crosswind} {
		if l.Caution < 0 || l.Max < 0 {
			return fmt.Errorf("%w: %s limits must be non-negative", ErrInvalidThresholds, name)
		}
		if l.Caution > l.Max {
			return fmt.Errorf("%w: %s caution %.0f exceeds max %.0f", ErrInvalidThresholds, name, l.Caution, l.Max)
		}
	}
	for name, l := range map[string]FloorLimit{"ceiling": t.Ceiling, "visibility": t.Visibility} {
		if l.Caution < 0 || l.Min < 0 {
			return fmt.Errorf("%w: %s limits must be non-negative", ErrInvalidThresholds, name)
		}
		if l.Caution < l.Min {
			return fmt.Errorf("%w: %s caution %g is below min %g", ErrInvalidThresholds, name, l.Caution, l.Min)
		}
	}
	return nil
}

// TierThresholds maps every tier to its thresholds
type TierThresholds map[Tier]Thresholds

// Validate requires a valid threshold set for every tier
func (tt TierThresholds) Validate() error {
	for _, tier := range Tiers {
		t, ok := tt[tier]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingTier, tier)
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tier %s: %w", tier, err)
		}
	}
	return nil
}

// Conditions are the inputs to one rating
type Conditions struct {
	Headwind      int
	Crosswind     int
	GustHeadwind  int
	GustCrosswind int
	Ceiling       int     // feet, wx.UnlimitedCeiling when no ceiling
	Visibility    float64 // statute miles
}

// Classify rates conditions against one tier's thresholds. Red is checked
// first, then yellow; gusts always count through max with the sustained
// value.
func Classify(c Conditions, t Thresholds) Color {
	head := float64(max(c.Headwind, c.GustHeadwind))
	cross := float64(max(abs(c.Crosswind), abs(c.GustCrosswind)))
	ceiling := float64(c.Ceiling)

	if head > t.Headwind.Max ||
		cross > t.Crosswind.Max ||
		t.Ceiling.Min > ceiling ||
		c.Visibility < t.Visibility.Min {
		return Red
	}
	if head > t.Headwind.Caution ||
		cross > t.Crosswind.Caution ||
		t.Ceiling.Caution > ceiling ||
		c.Visibility < t.Visibility.Caution {
		return Yellow
	}
	return Green
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
