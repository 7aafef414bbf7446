package wx

import "strings"

// phenomenonCodes are the two-letter present weather codes. The table is
// shared by the METAR and TAF decoders and is never written after init.
var phenomenonCodes = map[string]string{
	// descriptors
	"MI": "shallow",
	"PR": "partial",
	"BC": "patches",
	"DR": "low drifting",
	"BL": "blowing",
	"SH": "showers",
	"TS": "thunderstorm",
	"FZ": "freezing",
	// precipitation
	"RA": "rain",
	"DZ": "drizzle",
	"SN": "snow",
	"SG": "snow grains",
	"IC": "ice crystals",
	"PL": "ice pellets",
	"GR": "hail",
	"GS": "small hail",
	"UP": "unknown precipitation",
	// obscuration
	"FG": "fog",
	"VA": "volcanic ash",
	"BR": "mist",
	"HZ": "haze",
	"DU": "widespread dust",
	"FU": "smoke",
	"SA": "sand",
	"PY": "spray",
	// other
	"SQ": "squall",
	"PO": "dust or sand whirls",
	"DS": "duststorm",
	"SS": "sandstorm",
	"FC": "funnel cloud",
}

// wholeTokens only match as complete tokens
var wholeTokens = map[string]string{
	"NOSIG": "no significant weather",
	"NSW":   "no significant weather",
	"LTG":   "lightning",
	"TCU":   "towering cumulus",
	"TWR":   "towering",
	"CB":    "cumulonimbus",
}

// recentWeather holds the RE-prefixed groups with their own wording
var recentWeather = map[string]string{
	"REBLSN": "recent moderate/heavy blowing snow",
	"REDS":   "recent duststorm",
	"REFC":   "recent funnel cloud",
	"REFZDZ": "recent freezing drizzle",
	"REFZRA": "recent freezing rain",
	"REGP":   "recent moderate/heavy snow pellets",
	"REGR":   "recent moderate/heavy hail",
	"REGS":   "recent moderate/heavy small hail",
	"REIC":   "recent moderate/heavy ice crystals",
	"REPL":   "recent moderate/heavy ice pellets",
	"RERA":   "recent moderate/heavy rain",
	"RESG":   "recent moderate/heavy snow grains",
	"RESHGR": "recent moderate/heavy hail showers",
	"RESHGS": "recent moderate/heavy small hail showers",
	"RESHPL": "recent moderate/heavy ice pellet showers",
	"RESHRA": "recent moderate/heavy rain showers",
	"RESHSN": "recent moderate/heavy snow showers",
	"RESN":   "recent moderate/heavy snow",
	"RESS":   "recent sandstorm",
	"RETS":   "recent thunderstorm",
	"REUP":   "recent unidentified precipitation",
	"REVA":   "recent volcanic ash",
}

// DescribeCode returns the description of a single weather code such as
// "TS", "NOSIG" or "RERA".
func DescribeCode(code string) (string, bool) {
	if d, ok := phenomenonCodes[code]; ok {
		return d, true
	}
	if d, ok := wholeTokens[code]; ok {
		return d, true
	}
	d, ok := recentWeather[code]
	return d, ok
}

// DecodePhenomena decodes a present weather group like "-SHRA", "VCTS" or
// "RERA". The whole token must be consumed for it to count as a match.
func DecodePhenomena(token string) (string, bool) {
	if d, ok := wholeTokens[token]; ok {
		return d, true
	}
	if strings.HasPrefix(token, "RE") {
		if d, ok := recentWeather[token]; ok {
			return d, true
		}
		d, ok := decodeGroup(token[2:])
		if !ok {
			return "", false
		}
		return "recent " + d, true
	}
	return decodeGroup(token)
}

func decodeGroup(token string) (string, bool) {
	var parts []string
	rest := token
	switch {
	case strings.HasPrefix(rest, "-"):
		parts = append(parts, "light")
		rest = rest[1:]
	case strings.HasPrefix(rest, "+"):
		parts = append(parts, "heavy")
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "VC") {
		parts = append(parts, "in the vicinity")
		rest = rest[2:]
	}
	if rest == "" || len(rest)%2 != 0 {
		return "", false
	}
	for i := 0; i < len(rest); i += 2 {
		d, ok := phenomenonCodes[rest[i:i+2]]
		if !ok {
			return "", false
		}
		parts = append(parts, d)
	}
	return strings.Join(parts, " "), true
}
