package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chartBody(timestamps []int64, adjcloses []string) string {
	ts := make([]string, len(timestamps))
	for i, t := range timestamps {
		ts[i] = fmt.Sprintf("%d", t)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],
		"indicators":{"quote":[{"close":[%s]}],"adjclose":[{"adjclose":[%s]}]}}],"error":null}}`,
		strings.Join(ts, ","), strings.Join(adjcloses, ","), strings.Join(adjcloses, ","))
}

func TestYahooDailyAdjCloses(t *testing.T) {
	day1 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v8/finance/chart/PETR4.SA") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %q, want 1d", r.URL.Query().Get("interval"))
		}
		fmt.Fprint(w, chartBody([]int64{day1.Unix(), day2.Unix()}, []string{"36.10", "36.55"}))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	closes, err := p.DailyAdjCloses(context.Background(), "PETR4.SA",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyAdjCloses: %v", err)
	}
	if len(closes) != 2 {
		t.Fatalf("got %d closes, want 2", len(closes))
	}
	if closes[0].AdjClose != 36.10 || closes[1].AdjClose != 36.55 {
		t.Errorf("closes = %+v", closes)
	}
	wantDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !closes[0].Date.Equal(wantDate) {
		t.Errorf("first date = %v, want %v (day precision)", closes[0].Date, wantDate)
	}
}

func TestYahooSkipsNullSessions(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chartBody([]int64{day.Unix(), day.AddDate(0, 0, 1).Unix()}, []string{"10.0", "null"}))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	closes, err := p.DailyAdjCloses(context.Background(), "VALE3.SA", day, day.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("DailyAdjCloses: %v", err)
	}
	if len(closes) != 1 {
		t.Fatalf("got %d closes, want 1 (null session dropped)", len(closes))
	}
}

func TestYahooEmptyRangeIsErrNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	_, err := p.DailyAdjCloses(context.Background(), "XXXX11.SA", time.Now().AddDate(0, 0, -5), time.Now())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestYahooNotFoundIsErrNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	_, err := p.DailyAdjCloses(context.Background(), "NOPE.SA", time.Now().AddDate(0, 0, -5), time.Now())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestYahooAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"invalid period"}}}`)
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	_, err := p.DailyAdjCloses(context.Background(), "PETR4.SA", time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected error from chart error payload")
	}
	if !strings.Contains(err.Error(), "invalid period") {
		t.Errorf("error should carry provider description: %v", err)
	}
}
