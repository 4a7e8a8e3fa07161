package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWeatherParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Minsk,BY" {
			t.Errorf("unexpected city query: %q", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("expected metric units, got %q", got)
		}
		w.Write([]byte(`{"main":{"temp":-3.4},"weather":[{"description":"light snow"}]}`))
	}))
	defer srv.Close()

	c := NewClient("key", "", nil)
	c.WeatherBaseURL = srv.URL

	r, err := c.Weather(context.Background(), "Minsk,BY")
	if err != nil {
		t.Fatalf("weather: %v", err)
	}
	if r.TempC != -3.4 || r.Description != "light snow" {
		t.Fatalf("unexpected report: %+v", r)
	}
	if got := r.String(); got != "-3.4°C, light snow" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}

func TestWeatherNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key", "", nil)
	c.WeatherBaseURL = srv.URL

	if _, err := c.Weather(context.Background(), "Minsk,BY"); err == nil {
		t.Fatalf("expected error on 401")
	}
}

func TestUSDRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"usd":{"byn":3.27,"rub":91.5,"eur":0.92}}`))
	}))
	defer srv.Close()

	c := NewClient("", "", nil)
	c.RatesURL = srv.URL

	r, err := c.USDRates(context.Background())
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if r.BYN != 3.27 || r.RUB != 91.5 {
		t.Fatalf("unexpected rates: %+v", r)
	}
}

func TestCrypto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":64123.5},"worldcoin":{"usd":1.84}}`))
	}))
	defer srv.Close()

	c := NewClient("", "", nil)
	c.CryptoURL = srv.URL

	p, err := c.Crypto(context.Background())
	if err != nil {
		t.Fatalf("crypto: %v", err)
	}
	if p.BTCUSD != 64123.5 || p.WLDUSD != 1.84 {
		t.Fatalf("unexpected prices: %+v", p)
	}
}

func TestLastFixturesSendsRapidAPIHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-RapidAPI-Key"); got != "rk" {
			t.Errorf("missing rapidapi key header, got %q", got)
		}
		w.Write([]byte(`{"response":[
			{"fixture":{"id":1001,"date":"2026-08-20T19:00:00+00:00"},
			 "teams":{"home":{"id":541,"name":"Real Madrid"},"away":{"id":529,"name":"Barcelona"}},
			 "goals":{"home":2,"away":1}},
			{"fixture":{"id":1002,"date":"2026-08-13T19:00:00+00:00"},
			 "teams":{"home":{"id":530,"name":"Atletico"},"away":{"id":541,"name":"Real Madrid"}},
			 "goals":{"home":null,"away":null}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("", "rk", nil)
	c.FootballBaseURL = srv.URL

	fixtures, err := c.LastFixtures(context.Background(), 541, 5)
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(fixtures))
	}
	if fixtures[0].Date != "2026-08-20" {
		t.Fatalf("date not trimmed: %q", fixtures[0].Date)
	}
	if fixtures[0].HomeGoals != 2 || fixtures[0].AwayGoals != 1 {
		t.Fatalf("unexpected goals: %+v", fixtures[0])
	}
	// null goals decode as zero
	if fixtures[1].HomeGoals != 0 || fixtures[1].AwayGoals != 0 {
		t.Fatalf("null goals should be 0: %+v", fixtures[1])
	}
}

func TestGoalEventsFiltersNonGoals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":[
			{"type":"Goal","time":{"elapsed":23},"player":{"name":"Vinicius"}},
			{"type":"Card","time":{"elapsed":40},"player":{"name":"Someone"}},
			{"type":"Goal","time":{"elapsed":88},"player":{"name":"Bellingham"}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("", "rk", nil)
	c.FootballBaseURL = srv.URL

	evs, err := c.GoalEvents(context.Background(), 1001)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 goal events, got %d", len(evs))
	}
	if evs[0].Player != "Vinicius" || evs[0].Minute != 23 {
		t.Fatalf("unexpected event: %+v", evs[0])
	}
}

func TestFormatFixtures(t *testing.T) {
	fixtures := []Fixture{
		{ID: 1, Date: "2026-08-20", HomeID: 541, HomeName: "Real Madrid", HomeGoals: 2, AwayID: 529, AwayName: "Barcelona", AwayGoals: 1},
		{ID: 2, Date: "2026-08-13", HomeID: 530, HomeName: "Atletico", HomeGoals: 1, AwayID: 541, AwayName: "Real Madrid", AwayGoals: 0},
		{ID: 3, Date: "2026-08-06", HomeID: 541, HomeName: "Real Madrid", HomeGoals: 1, AwayID: 532, AwayName: "Valencia", AwayGoals: 1},
	}
	goals := map[int64][]GoalEvent{
		1: {{Player: "Vinicius", Minute: 23}, {Player: "Bellingham", Minute: 88}},
		3: {},
	}

	out := FormatFixtures("real", 541, fixtures, goals)

	if !strings.Contains(out, "Last 3 matches for REAL:") {
		t.Fatalf("missing header: %q", out)
	}
	// win at home, loss away, draw
	if !strings.Contains(out, "🟢 2026-08-20") || !strings.Contains(out, "🔴 2026-08-13") || !strings.Contains(out, "🟡 2026-08-06") {
		t.Fatalf("result icons wrong:\n%s", out)
	}
	if !strings.Contains(out, "Goals: Vinicius (23'), Bellingham (88')") {
		t.Fatalf("goal line wrong:\n%s", out)
	}
	if !strings.Contains(out, "Goals: unavailable") {
		t.Fatalf("missing unavailable line:\n%s", out)
	}
	if !strings.Contains(out, "Goals: none") {
		t.Fatalf("missing none line:\n%s", out)
	}
}
