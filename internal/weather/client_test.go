package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yegors/tailwinds/pkg/logger"
)

const providerBody = `KPNE 261554Z 32012KT 10SM FEW050 SCT250 27/13 A3007

KPNE 261720Z 2618/2718 31012G20KT P6SM SCT050
  FM262000 30010KT P6SM BKN040
`

func testClientConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.APIBaseURL = baseURL
	cfg.MaxRetries = 1
	cfg.RateLimitPerSecond = 0
	return cfg
}

func TestClientFetchRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/metar" || q.Get("ids") != "KPNE" || q.Get("taf") != "true" || q.Get("sep") != "true" {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = w.Write([]byte(providerBody))
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL), logger.NewNop())
	got, err := c.FetchRaw(context.Background(), "KPNE")
	if err != nil {
		t.Fatalf("FetchRaw: %v", err)
	}
	want := &RawReport{
		Station: "KPNE",
		Metar:   "KPNE 261554Z 32012KT 10SM FEW050 SCT250 27/13 A3007",
		Taf:     "TAF KPNE 261720Z 2618/2718 31012G20KT P6SM SCT050\n  FM262000 30010KT P6SM BKN040",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FetchRaw mismatch (-want +got):\n%s", diff)
	}
}

func TestClientRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(providerBody))
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL), logger.NewNop())
	if _, err := c.FetchRaw(context.Background(), "KPNE"); err != nil {
		t.Fatalf("FetchRaw after retry: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected 2 calls, got %d", n)
	}
}

func TestClientGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testClientConfig(srv.URL)
	cfg.MaxRetries = 0
	c := NewClient(cfg, logger.NewNop())
	if _, err := c.FetchRaw(context.Background(), "KPNE"); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestClientEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\n\n"))
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL), logger.NewNop())
	if _, err := c.FetchRaw(context.Background(), "KPNE"); !errors.Is(err, ErrNoMETAR) {
		t.Fatalf("err = %v, want ErrNoMETAR", err)
	}
}

func TestSplitRaw(t *testing.T) {
	got, err := SplitRaw("KPNE", "KPNE 261554Z 32012KT\r\n")
	if err != nil {
		t.Fatalf("SplitRaw: %v", err)
	}
	if got.Taf != "" || got.Metar != "KPNE 261554Z 32012KT" {
		t.Fatalf("unexpected split %+v", got)
	}

	got, err = SplitRaw("KPNE", "KPNE 261554Z 32012KT\nTAF KPNE 261720Z 2618/2718 31012KT")
	if err != nil {
		t.Fatalf("SplitRaw: %v", err)
	}
	if got.Taf != "TAF KPNE 261720Z 2618/2718 31012KT" {
		t.Fatalf("TAF prefix should not be doubled: %q", got.Taf)
	}
}
