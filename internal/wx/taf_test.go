package wx

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const kpneTaf = `TAF KPNE 261720Z 2618/2718 31012G20KT P6SM SCT050
  FM262000 30010KT P6SM BKN040
  TEMPO 2620/2624 3SM -SHRA BKN025
  PROB30 2702/2706 2SM TSRA OVC015CB
  FM270300 28008KT P6SM SKC`

func utc(day, hour int) *time.Time {
	t := time.Date(2025, time.June, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func testRef() Reference {
	return NewReference(time.Date(2025, time.June, 26, 15, 0, 0, 0, time.UTC), time.UTC)
}

func TestDecodeTafPeriods(t *testing.T) {
	got := DecodeTaf(kpneTaf, 10, testRef())

	want := Taf{
		Station:   "KPNE",
		Issued:    ptr(time.Date(2025, time.June, 26, 17, 20, 0, 0, time.UTC)),
		ValidFrom: utc(26, 18),
		ValidTo:   utc(27, 18),
		Until:     "03:00",
		Periods: []ForecastPeriod{
			{
				Kind:       PeriodBase,
				From:       utc(26, 18),
				To:         utc(27, 18),
				TimeLocal:  "18:00",
				Wind:       &WindReport{Direction: 310, Speed: 12, Gust: ptr(20)},
				Visibility: &Visibility{StatuteMiles: 6, AtLeast: true},
				Clouds:     []CloudLayer{{Coverage: CoverageScattered, Base: 5000}},
				Raw:        "TAF KPNE 261720Z 2618/2718 31012G20KT P6SM SCT050",
			},
			{
				Kind:       PeriodFrom,
				From:       utc(26, 20),
				TimeLocal:  "20:00",
				Wind:       &WindReport{Direction: 300, Speed: 10},
				Visibility: &Visibility{StatuteMiles: 6, AtLeast: true},
				Clouds:     []CloudLayer{{Coverage: CoverageBroken, Base: 4000}},
				Raw:        "FM262000 30010KT P6SM BKN040",
			},
			{
				Kind:       PeriodTempo,
				From:       utc(26, 20),
				To:         utc(27, 0),
				TimeLocal:  "20:00",
				Visibility: &Visibility{StatuteMiles: 3},
				Clouds:     []CloudLayer{{Coverage: CoverageBroken, Base: 2500}},
				Weather:    "light showers rain",
				Raw:        "TEMPO 2620/2624 3SM -SHRA BKN025",
			},
			{
				Kind:        PeriodProb,
				Probability: 30,
				ProbStart:   "02:00",
				ProbEnd:     "06:00",
				TimeLocal:   "02:00",
				Visibility:  &Visibility{StatuteMiles: 2},
				Clouds:      []CloudLayer{{Coverage: CoverageOvercast, Base: 1500, Type: "CB"}},
				Weather:     "thunderstorm rain",
				Raw:         "PROB30 2702/2706 2SM TSRA OVC015CB",
			},
		},
		Raw: strings.Join([]string{
			"TAF KPNE 261720Z 2618/2718 31012G20KT P6SM SCT050",
			"FM262000 30010KT P6SM BKN040",
			"TEMPO 2620/2624 3SM -SHRA BKN025",
			"PROB30 2702/2706 2SM TSRA OVC015CB",
			"FM270300 28008KT P6SM SKC",
		}, "\n"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DecodeTaf mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTafHorizonCutoff(t *testing.T) {
	got := DecodeTaf(kpneTaf, 3, testRef())

	if len(got.Periods) != 1 || got.Periods[0].Kind != PeriodBase {
		t.Fatalf("expected only the base period, got %+v", got.Periods)
	}
	if got.Until != "20:00" {
		t.Fatalf("until = %q, want 20:00", got.Until)
	}
	wantRaw := "TAF KPNE 261720Z 2618/2718 31012G20KT P6SM SCT050\nFM262000 30010KT P6SM BKN040"
	if got.Raw != wantRaw {
		t.Fatalf("raw = %q, want %q", got.Raw, wantRaw)
	}
}

func TestDecodeTafNoCutoff(t *testing.T) {
	got := DecodeTaf(kpneTaf, 24, testRef())
	if got.Until != "" {
		t.Fatalf("until = %q, want empty", got.Until)
	}
	if len(got.Periods) != 5 {
		t.Fatalf("got %d periods, want 5", len(got.Periods))
	}
	if got.Raw != strings.Join(splitLines(kpneTaf), "\n") {
		t.Fatalf("raw should hold every line, got %q", got.Raw)
	}
}

func TestDecodeTafOnlyFromPeriodsStopDecoding(t *testing.T) {
	text := "TAF KPNE 261720Z 2618/2718 31012KT P6SM SKC\nTEMPO 2702/2706 3SM BR\nFM261500 27010KT"
	got := DecodeTaf(text, 0, testRef())
	if got.Until != "" || len(got.Periods) != 3 {
		t.Fatalf("TEMPO beyond the horizon must not cut: until=%q periods=%d", got.Until, len(got.Periods))
	}
}

func TestDecodeTafLocalClock(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	ref := NewReference(time.Date(2025, time.June, 26, 15, 0, 0, 0, time.UTC), ny)
	got := DecodeTaf(kpneTaf, 3, ref)
	if got.Until != "16:00" {
		t.Fatalf("until = %q, want local 16:00", got.Until)
	}
	if got.Periods[0].TimeLocal != "14:00" {
		t.Fatalf("base time = %q, want 14:00", got.Periods[0].TimeLocal)
	}
}

func TestDecodeTafGluedTempo(t *testing.T) {
	got := DecodeTaf("TAF KPNE 261720Z 2618/2718 31012KT P6SM SKC\nTEMPO2024 2SM BR", 24, testRef())
	if len(got.Periods) != 2 {
		t.Fatalf("got %d periods", len(got.Periods))
	}
	p := got.Periods[1]
	if diff := cmp.Diff(utc(26, 20), p.From); diff != "" {
		t.Fatalf("from (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(utc(27, 0), p.To); diff != "" {
		t.Fatalf("to (-want +got):\n%s", diff)
	}
	if p.Weather != "mist" || p.Visibility.StatuteMiles != 2 {
		t.Fatalf("unexpected tempo groups: %+v", p)
	}
}

func TestDecodeTafAmendedHeader(t *testing.T) {
	got := DecodeTaf("TAF AMD KPNE 261720Z 2618/2718 VRB03KT P6SM SKC", 3, testRef())
	if got.Station != "KPNE" {
		t.Fatalf("station = %q", got.Station)
	}
	if got.Periods[0].Wind == nil || !got.Periods[0].Wind.Variable {
		t.Fatalf("base wind = %+v", got.Periods[0].Wind)
	}
}

func TestDecodeTafEmpty(t *testing.T) {
	got := DecodeTaf("  \n\n", 3, testRef())
	if got.Periods == nil || len(got.Periods) != 0 || got.Raw != "" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestReferenceMonthRollover(t *testing.T) {
	tests := []struct {
		now  time.Time
		day  int
		want time.Time
	}{
		{time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC), 1, time.Date(2025, time.July, 1, 6, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC), 30, time.Date(2025, time.June, 30, 6, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC), 1, time.Date(2026, time.January, 1, 6, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := NewReference(tt.now, time.UTC).Resolve(tt.day, 6, 0)
		if !got.Equal(tt.want) {
			t.Fatalf("Resolve(%d) at %v = %v, want %v", tt.day, tt.now, got, tt.want)
		}
	}
}

func TestReferenceUsesUTCDay(t *testing.T) {
	// 22:00 in New York on the 30th is already the 1st in UTC
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2025, time.June, 30, 22, 0, 0, 0, ny)
	got := NewReference(now, ny).Resolve(1, 6, 0)
	want := time.Date(2025, time.July, 1, 6, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestDecodeTafBecmgAndUnknownLines(t *testing.T) {
	text := "TAF KPNE 261720Z 2618/2718 31012KT P6SM SKC\nBECMG 2620/2622 25010KT\nAMD NOT SKED"
	got := DecodeTaf(text, 24, testRef())
	if len(got.Periods) != 3 {
		t.Fatalf("got %d periods, want 3", len(got.Periods))
	}

	becmg := got.Periods[1]
	if becmg.Kind != PeriodBecmg {
		t.Fatalf("kind = %q, want BECMG", becmg.Kind)
	}
	if diff := cmp.Diff(utc(26, 20), becmg.From); diff != "" {
		t.Fatalf("from (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(utc(26, 22), becmg.To); diff != "" {
		t.Fatalf("to (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&WindReport{Direction: 250, Speed: 10}, becmg.Wind); diff != "" {
		t.Fatalf("wind (-want +got):\n%s", diff)
	}

	for _, p := range got.Periods {
		if p.Kind == "" {
			t.Fatalf("period %q has no kind", p.Raw)
		}
	}
	if got.Periods[2].Kind != PeriodOther {
		t.Fatalf("kind = %q, want OTHER", got.Periods[2].Kind)
	}
}
