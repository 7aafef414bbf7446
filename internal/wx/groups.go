package wx

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	windRe     = regexp.MustCompile(`^(\d{3})(\d{2,3})(?:G(\d{2,3}))?KT$`)
	vrbWindRe  = regexp.MustCompile(`^VRB(\d{1,3})(?:G(\d{2,3}))?(?:KT)?$`)
	visRe      = regexp.MustCompile(`^([PM])?(\d+)SM$`)
	visFracRe  = regexp.MustCompile(`^([PM])?(\d+)/(\d+)SM$`)
	wholeNumRe = regexp.MustCompile(`^\d+$`)
	cloudRe    = regexp.MustCompile(`^(FEW|SCT|BKN|OVC)(\d{3,})([A-Z]*)$`)
)

// groups accumulates the wind, visibility, cloud and weather groups found
// in a run of tokens
type groups struct {
	wind    *WindReport
	vis     *Visibility
	clouds  []CloudLayer
	weather []string
}

// scanGroups classifies every token independently. Only the first wind
// group is kept. allowPlus accepts the TAF "P6SM" form.
func scanGroups(tokens []string, allowPlus bool) groups {
	var g groups
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "" {
			continue
		}

		if g.wind == nil {
			if w, ok := parseWind(tok); ok {
				g.wind = w
				continue
			}
		}

		// "1 1/2SM" spans two tokens
		if wholeNumRe.MatchString(tok) && i+1 < len(tokens) {
			if frac, ok := parseVisibility(tokens[i+1], allowPlus); ok && !frac.AtLeast && !frac.LessThan && frac.StatuteMiles < 1 {
				whole, _ := strconv.Atoi(tok)
				frac.StatuteMiles += float64(whole)
				g.vis = frac
				i++
				continue
			}
		}

		if v, ok := parseVisibility(tok, allowPlus); ok {
			g.vis = v
			continue
		}

		if c, ok := parseCloud(tok); ok {
			g.clouds = append(g.clouds, c)
			continue
		}

		if d, ok := DecodePhenomena(tok); ok {
			g.weather = append(g.weather, d)
		}
	}
	return g
}

func parseWind(tok string) (*WindReport, bool) {
	if m := windRe.FindStringSubmatch(tok); m != nil {
		dir, _ := strconv.Atoi(m[1])
		speed, _ := strconv.Atoi(m[2])
		return &WindReport{Direction: dir, Speed: speed, Gust: parseGust(m[3], speed)}, true
	}
	if m := vrbWindRe.FindStringSubmatch(tok); m != nil {
		speed, _ := strconv.Atoi(m[1])
		return &WindReport{Variable: true, Speed: speed, Gust: parseGust(m[2], speed)}, true
	}
	return nil, false
}

// parseGust keeps the gust only when it exceeds the sustained speed
func parseGust(raw string, speed int) *int {
	if raw == "" {
		return nil
	}
	gust, err := strconv.Atoi(raw)
	if err != nil || gust <= speed {
		return nil
	}
	return &gust
}

func parseVisibility(tok string, allowPlus bool) (*Visibility, bool) {
	var prefix string
	var miles float64
	if m := visRe.FindStringSubmatch(tok); m != nil {
		n, _ := strconv.Atoi(m[2])
		prefix, miles = m[1], float64(n)
	} else if m := visFracRe.FindStringSubmatch(tok); m != nil {
		num, _ := strconv.Atoi(m[2])
		den, _ := strconv.Atoi(m[3])
		if den == 0 {
			return nil, false
		}
		prefix, miles = m[1], float64(num)/float64(den)
	} else {
		return nil, false
	}

	v := &Visibility{StatuteMiles: miles}
	switch prefix {
	case "P":
		if !allowPlus {
			return nil, false
		}
		v.AtLeast = true
	case "M":
		v.LessThan = true
	}
	return v, true
}

// DecodeCloud decodes a single cloud group such as "OVC015CB"
func DecodeCloud(tok string) (CloudLayer, bool) {
	return parseCloud(tok)
}

func parseCloud(tok string) (CloudLayer, bool) {
	m := cloudRe.FindStringSubmatch(tok)
	if m == nil {
		return CloudLayer{}, false
	}
	base, err := strconv.Atoi(m[2])
	if err != nil {
		return CloudLayer{}, false
	}
	layer := CloudLayer{Coverage: Coverage(m[1]), Base: base * 100}
	switch {
	case strings.Contains(m[3], "TCU"):
		layer.Type = "TCU"
	case strings.Contains(m[3], "CB"):
		layer.Type = "CB"
	}
	return layer, true
}
