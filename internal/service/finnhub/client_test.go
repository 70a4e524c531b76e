package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SwingRank/internal/domain/models"
	drepo "SwingRank/internal/domain/repository"
)

func fixedClock() time.Time { return time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC) }

func TestLoadDailyBars(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/candle" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		query = map[string]string{"symbol": q.Get("symbol"), "resolution": q.Get("resolution"), "token": q.Get("token"), "from": q.Get("from")}
		// Out of order on purpose, with a duplicate day.
		_, _ = w.Write([]byte(`{"s":"ok",
			"t":[1719446400,1719360000,1719446400],
			"o":[11,10,12],"h":[12,11,13],"l":[10,9,11],"c":[11.5,10.5,12.5],"v":[100,200,300]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", time.Second, WithClock(fixedClock))
	s, err := c.LoadDailyBars(context.Background(), "TCS.NS", drepo.Period6M)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if query["symbol"] != "TCS.NS" || query["resolution"] != "D" || query["token"] != "secret" {
		t.Fatalf("unexpected query %v", query)
	}
	if want := "1703764800"; query["from"] != want {
		t.Fatalf("from=%s want %s", query["from"], want)
	}
	if s.Len() != 2 {
		t.Fatalf("bars=%d want 2 after de-duplication", s.Len())
	}
	if !s.Bars[0].Date.Before(s.Bars[1].Date) || s.Bars[1].Close != 12.5 {
		t.Fatalf("bars not ordered or duplicate not resolved: %+v", s.Bars)
	}
}

func TestLoadDailyBarsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"s":"no_data"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).LoadDailyBars(context.Background(), "X", drepo.Period1Y)
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestLoadDailyBarsNotFoundIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).LoadDailyBars(context.Background(), "X", drepo.Period1Y)
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestLoadQuarterlyFinancials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("freq") != "quarterly" {
			http.Error(w, "bad freq", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"data":[
			{"year":2024,"quarter":1,"endDate":"2024-03-31","report":{"ic":[{"concept":"us-gaap_Revenues","label":"Revenues","value":100}]}},
			{"year":2024,"quarter":2,"endDate":"2024-06-30","report":{"ic":[{"concept":"us-gaap_Revenues","label":"Revenues","value":120}]}}
		]}`))
	}))
	defer srv.Close()

	f, err := New(srv.URL, "k", time.Second).LoadQuarterlyFinancials(context.Background(), "X")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Quarters) != 2 || f.Quarters[0].Period != "2024-06-30" {
		t.Fatalf("quarters not most recent first: %+v", f.Quarters)
	}
	if f.Quarters[0].Items["Total Revenue"] != 120 {
		t.Fatalf("concept not mapped: %+v", f.Quarters[0].Items)
	}
}

func TestLoadQuarterlyFinancialsOrdersByFiscalQuarter(t *testing.T) {
	// Q4 carries no endDate; ordering by period text would put "2023-12-31"
	// ahead of "2024-Q1".
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"year":2023,"quarter":4,"endDate":"2023-12-31","report":{"ic":[{"concept":"us-gaap_Revenues","value":90}]}},
			{"year":2024,"quarter":1,"report":{"ic":[{"concept":"us-gaap_Revenues","value":100}]}},
			{"year":2023,"quarter":3,"endDate":"2023-09-30","report":{"ic":[{"concept":"us-gaap_Revenues","value":80}]}}
		]}`))
	}))
	defer srv.Close()

	f, err := New(srv.URL, "k", time.Second).LoadQuarterlyFinancials(context.Background(), "X")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"2024-Q1", "2023-12-31", "2023-09-30"}
	for i, w := range want {
		if f.Quarters[i].Period != w {
			t.Fatalf("quarter %d = %s want %s (%+v)", i, f.Quarters[i].Period, w, f.Quarters)
		}
	}
	if f.Quarters[0].Items["Total Revenue"] != 100 {
		t.Fatalf("latest quarter has wrong revenue: %+v", f.Quarters[0].Items)
	}
}
