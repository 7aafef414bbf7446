package wx

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	stationRe   = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)
	tempDewRe   = regexp.MustCompile(`^(M)?(\d{2})/(M)?(\d{2})?$`)
	tGroupRe    = regexp.MustCompile(`^T([01])(\d{3})([01])(\d{3})$`)
	altimeterRe = regexp.MustCompile(`^A(\d{4})$`)
)

// DecodeMetar decodes a single METAR line such as
// "KPNE 261554Z 32012KT 10SM FEW050 SCT250 27/13 A3007 RMK AO2".
// Unrecognised tokens are ignored.
func DecodeMetar(text string) Metar {
	text = strings.TrimSpace(text)
	m := Metar{Raw: text, Clouds: []CloudLayer{}}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return m
	}
	body := tokens
	if body[0] == "METAR" || body[0] == "SPECI" {
		body = body[1:]
	}
	if len(body) > 0 && stationRe.MatchString(body[0]) {
		m.Station = body[0]
		body = body[1:]
	}

	g := scanGroups(body, false)
	m.Wind = g.wind
	m.Visibility = g.vis
	if g.clouds != nil {
		m.Clouds = g.clouds
	}
	m.Weather = strings.Join(g.weather, " ")

	decodeTemperature(&m, tokens)
	for _, tok := range tokens {
		if match := altimeterRe.FindStringSubmatch(tok); match != nil {
			hundredths, _ := strconv.Atoi(match[1])
			inHg := float64(hundredths) / 100
			m.Altimeter = &inHg
			break
		}
	}
	return m
}

// decodeTemperature reads the "22/M05" body group and prefers the tenths
// precision "T00561050" remark group when present.
func decodeTemperature(m *Metar, tokens []string) {
	for _, tok := range tokens {
		match := tempDewRe.FindStringSubmatch(tok)
		if match == nil {
			continue
		}
		t := signed(match[1] == "M", match[2], 1)
		m.Temperature = &t
		if match[4] != "" {
			d := signed(match[3] == "M", match[4], 1)
			m.Dewpoint = &d
		}
		break
	}

	for _, tok := range tokens {
		match := tGroupRe.FindStringSubmatch(tok)
		if match == nil {
			continue
		}
		t := signed(match[1] == "1", match[2], 10)
		d := signed(match[3] == "1", match[4], 10)
		m.Temperature = &t
		m.Dewpoint = &d
		break
	}
}

func signed(negative bool, digits string, divisor float64) float64 {
	v, _ := strconv.ParseFloat(digits, 64)
	v /= divisor
	if negative {
		v = -v
	}
	return v
}
