package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trendflow/config"
	"trendflow/quota"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Trendflow: config.Trendflow{Name: "trendflow-test", Version: "0.0"},
		YouTube: config.YouTubeConfig{
			BaseURL:           baseURL,
			Region:            "US",
			CategoryID:        "26",
			MaxResults:        50,
			Timeout:           config.Duration(2 * time.Second),
			RequestsPerSecond: 1000,
		},
	}
}

func TestMostPopularChargesLedger(t *testing.T) {
	var gotKey, gotChart string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotChart = r.URL.Query().Get("chart")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"vid1","snippet":{"title":"glass skin routine"}}]}`))
	}))
	defer srv.Close()

	ledger := quota.NewLedger([]string{"key-a"}, 10000)
	c := NewClient(testConfig(srv.URL), ledger)

	videos, err := c.MostPopular(context.Background())
	if err != nil {
		t.Fatalf("most popular: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != "vid1" {
		t.Fatalf("unexpected videos: %+v", videos)
	}
	if gotKey != "key-a" {
		t.Fatalf("request did not carry the selected key: %q", gotKey)
	}
	if gotChart != "mostPopular" {
		t.Fatalf("unexpected chart parameter: %q", gotChart)
	}
	if used := ledger.Used(); used != CostList {
		t.Fatalf("ledger charged %d, want %d", used, CostList)
	}
}

func TestSearchCostsHundredUnits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":{"videoId":"vid2"}}]}`))
	}))
	defer srv.Close()

	ledger := quota.NewLedger([]string{"key-a"}, 10000)
	c := NewClient(testConfig(srv.URL), ledger)

	ids, err := c.Search(context.Background(), "korean skincare", time.Now().Add(-7*24*time.Hour), 20)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(ids) != 1 || ids[0] != "vid2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if used := ledger.Used(); used != CostSearch {
		t.Fatalf("ledger charged %d, want %d", used, CostSearch)
	}
}

func TestNon200IsErrorButStillCharged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ledger := quota.NewLedger([]string{"key-a"}, 10000)
	c := NewClient(testConfig(srv.URL), ledger)

	if _, err := c.MostPopularIDs(context.Background()); err == nil {
		t.Fatalf("expected error for 403 response")
	}
	if used := ledger.Used(); used != CostList {
		t.Fatalf("failed call must still be charged, got %d", used)
	}
}

func TestExhaustedLedgerIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	ledger := quota.NewLedger([]string{"key-a"}, 100)
	c := NewClient(testConfig(srv.URL), ledger)

	// Spend the key past its rotation threshold.
	if err := ledger.Charge(95); !errors.Is(err, quota.ErrExhausted) {
		t.Fatalf("expected exhaustion from charge, got %v", err)
	}

	_, err := c.MostPopularIDs(context.Background())
	if !errors.Is(err, quota.ErrExhausted) {
		t.Fatalf("expected quota.ErrExhausted, got %v", err)
	}
}

func TestVideosByIDChunksAtFifty(t *testing.T) {
	var calls int
	var lengths []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		lengths = append(lengths, len(strings.Split(r.URL.Query().Get("id"), ",")))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"x"}]}`))
	}))
	defer srv.Close()

	ledger := quota.NewLedger([]string{"key-a"}, 10000)
	c := NewClient(testConfig(srv.URL), ledger)

	ids := make([]string, 60)
	for i := range ids {
		ids[i] = fmt.Sprintf("vid%d", i)
	}
	videos, err := c.VideosByID(context.Background(), ids)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if calls != 2 {
		t.Fatalf("got %d calls, want 2", calls)
	}
	if lengths[0] != 50 || lengths[1] != 10 {
		t.Fatalf("chunk sizes = %v, want [50 10]", lengths)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d videos across chunks, want 2", len(videos))
	}
	if used := ledger.Used(); used != 2*CostList {
		t.Fatalf("ledger charged %d, want one unit per chunk", used)
	}
}

func TestVideosByIDEmptyInput(t *testing.T) {
	ledger := quota.NewLedger([]string{"key-a"}, 100)
	c := NewClient(testConfig("http://127.0.0.1:1"), ledger)

	videos, err := c.VideosByID(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty hydrate should be a no-op: %v", err)
	}
	if len(videos) != 0 {
		t.Fatalf("expected no videos, got %d", len(videos))
	}
	if used := ledger.Used(); used != 0 {
		t.Fatalf("no request should be charged, got %d", used)
	}
}
