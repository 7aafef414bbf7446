package wx

import (
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var issuedRe = regexp.MustCompile(`^(\d{6})Z$`)

// DecodeTaf decodes a multi-line TAF bulletin whose first line starts with
// "TAF". Decoding stops at the first FM period that begins more than
// horizonHours after ref.Now; that period is dropped and its local time is
// recorded in Until.
func DecodeTaf(text string, horizonHours int, ref Reference) Taf {
	taf := Taf{Periods: []ForecastPeriod{}}
	lines := splitLines(text)
	if len(lines) == 0 {
		return taf
	}

	if h, ok := parseHeader(strings.Fields(lines[0]), ref); ok {
		taf.Station = h.station
		taf.Issued = h.issued
		taf.ValidFrom = h.validFrom
		taf.ValidTo = h.validTo
	}

	horizon := ref.Now.Add(time.Duration(horizonHours) * time.Hour)
	last := len(lines) - 1
	for i, p := range periods(lines, ref) {
		if beyond(p, horizon) {
			taf.Until = p.TimeLocal
			last = i
			break
		}
		taf.Periods = append(taf.Periods, p)
	}
	taf.Raw = strings.Join(lines[:last+1], "\n")
	return taf
}

func beyond(p ForecastPeriod, horizon time.Time) bool {
	return p.Kind == PeriodFrom && p.From != nil && p.From.After(horizon)
}

// periods lazily decodes one forecast period per line
func periods(lines []string, ref Reference) iter.Seq2[int, ForecastPeriod] {
	return func(yield func(int, ForecastPeriod) bool) {
		for i, line := range lines {
			if !yield(i, decodePeriod(line, ref)) {
				return
			}
		}
	}
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

type header struct {
	station   string
	issued    *time.Time
	validFrom *time.Time
	validTo   *time.Time
	consumed  int
}

// parseHeader reads "TAF [AMD|COR] KPNE 261720Z 2618/2718"
func parseHeader(tokens []string, ref Reference) (header, bool) {
	if len(tokens) == 0 || tokens[0] != "TAF" {
		return header{}, false
	}
	h := header{consumed: 1}
	for h.consumed < len(tokens) && (tokens[h.consumed] == "AMD" || tokens[h.consumed] == "COR") {
		h.consumed++
	}
	if h.consumed < len(tokens) && stationRe.MatchString(tokens[h.consumed]) {
		h.station = tokens[h.consumed]
		h.consumed++
	}
	if h.consumed < len(tokens) {
		if m := issuedRe.FindStringSubmatch(tokens[h.consumed]); m != nil {
			if t, ok := ref.resolveDayTime(m[1]); ok {
				h.issued = &t
			}
			h.consumed++
		}
	}
	if h.consumed < len(tokens) {
		if from, to, ok := ref.resolveWindow(tokens[h.consumed]); ok && strings.Contains(tokens[h.consumed], "/") {
			h.validFrom, h.validTo = &from, &to
			h.consumed++
		}
	}
	return h, true
}

func decodePeriod(line string, ref Reference) ForecastPeriod {
	p := ForecastPeriod{Raw: line}
	tokens := strings.Fields(line)
	lead := tokens[0]
	rest := tokens[1:]

	switch {
	case lead == "TAF":
		h, _ := parseHeader(tokens, ref)
		p.Kind = PeriodBase
		p.From, p.To = h.validFrom, h.validTo
		if p.From != nil {
			p.TimeLocal = ref.Clock(*p.From)
		}
		rest = tokens[h.consumed:]

	case strings.HasPrefix(lead, "FM"):
		p.Kind = PeriodFrom
		if t, ok := ref.resolveDayTime(lead[2:]); ok {
			p.From = &t
			p.TimeLocal = ref.Clock(t)
		}

	case strings.HasPrefix(lead, "TEMPO"):
		p.Kind = PeriodTempo
		window := lead[len("TEMPO"):]
		if window == "" && len(rest) > 0 {
			window, rest = rest[0], rest[1:]
		}
		if from, to, ok := ref.resolveWindow(window); ok {
			p.From, p.To = &from, &to
			p.TimeLocal = ref.Clock(from)
		}

	case strings.HasPrefix(lead, "PROB"):
		p.Kind = PeriodProb
		p.Probability, _ = strconv.Atoi(lead[len("PROB"):])
		if len(rest) > 0 {
			if from, to, ok := ref.resolveWindow(rest[0]); ok && len(rest[0]) >= 8 {
				p.ProbStart = ref.Clock(from)
				p.ProbEnd = ref.Clock(to)
				p.TimeLocal = p.ProbStart
				rest = rest[1:]
			}
		}

	case lead == "BECMG":
		p.Kind = PeriodBecmg
		if len(rest) > 0 {
			if from, to, ok := ref.resolveWindow(rest[0]); ok {
				p.From, p.To = &from, &to
				p.TimeLocal = ref.Clock(from)
				rest = rest[1:]
			}
		}

	default:
		p.Kind = PeriodOther
		rest = tokens
	}

	g := scanGroups(rest, true)
	p.Wind = g.wind
	p.Visibility = g.vis
	p.Clouds = g.clouds
	p.Weather = strings.Join(g.weather, " ")
	return p
}
