package boxscore

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/retry"
)

func newTestClient(serverURL string) *Client {
	c := New(serverURL, "test-key")
	c.policy = retry.NewPolicy(2, time.Millisecond, time.Millisecond)
	return c
}

func TestFetchGamesFollowsCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		cursor := r.URL.Query().Get("cursor")
		if cursor == "" {
			fmt.Fprint(w, `{
				"data": [{
					"id": 101,
					"datetime": "2024-01-05T23:00:00Z",
					"home_team": {"abbreviation": "DEN", "full_name": "Denver Nuggets"},
					"visitor_team": {"abbreviation": "LAC", "full_name": "Los Angeles Clippers"},
					"home_team_score": 111, "visitor_team_score": 102,
					"status": "Final", "season": 2023, "postseason": false
				}],
				"meta": {"next_cursor": 7}
			}`)
			return
		}
		if cursor != "7" {
			t.Errorf("unexpected cursor %s", cursor)
		}
		fmt.Fprint(w, `{
			"data": [{
				"id": 102,
				"datetime": "2024-01-06T01:00:00Z",
				"home_team": {"abbreviation": "BOS", "full_name": "Boston Celtics"},
				"visitor_team": {"abbreviation": "MIA", "full_name": "Miami Heat"},
				"home_team_score": 0, "visitor_team_score": 0,
				"status": "Scheduled", "season": 2023, "postseason": false
			}],
			"meta": {"next_cursor": 0}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	from := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	games, invalid, err := client.FetchGames(context.Background(), from, to)
	if err != nil {
		t.Fatalf("fetch games: %v", err)
	}
	if len(invalid) != 0 {
		t.Errorf("invalid rows: %v", invalid)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2 across pages", len(games))
	}

	first := games[0]
	if first.ProviderGameKey != "101" {
		t.Errorf("key = %s, want 101", first.ProviderGameKey)
	}
	if first.HomeAbbrev != "DEN" || first.AwayAbbrev != "LAC" {
		t.Errorf("teams = %s/%s", first.HomeAbbrev, first.AwayAbbrev)
	}
	if first.HomeScore != 111 || first.AwayScore != 102 {
		t.Errorf("scores = %d/%d", first.HomeScore, first.AwayScore)
	}
	if !first.StartTime.Equal(time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)) {
		t.Errorf("start time = %v", first.StartTime)
	}
	if games[1].ProviderGameKey != "102" {
		t.Errorf("second key = %s, want 102", games[1].ProviderGameKey)
	}
}

func TestFetchGamesReportsInvalidRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"data": [
				{
					"id": 201,
					"datetime": "2024-01-05T23:00:00Z",
					"home_team": {"abbreviation": "DEN", "full_name": "Denver Nuggets"},
					"visitor_team": {"abbreviation": "", "full_name": ""},
					"status": "Final", "season": 2023
				},
				{
					"id": 202,
					"datetime": "not-a-time",
					"home_team": {"abbreviation": "BOS", "full_name": "Boston Celtics"},
					"visitor_team": {"abbreviation": "MIA", "full_name": "Miami Heat"},
					"status": "Final", "season": 2023
				},
				{
					"id": 203,
					"date": "2024-01-05",
					"home_team": {"abbreviation": "BOS", "full_name": "Boston Celtics"},
					"visitor_team": {"abbreviation": "MIA", "full_name": "Miami Heat"},
					"status": "Final", "season": 2023
				}
			],
			"meta": {"next_cursor": 0}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	games, invalid, err := client.FetchGames(context.Background(), time.Now(), time.Now())
	if err != nil {
		t.Fatalf("fetch games: %v", err)
	}

	// 201 has no away abbreviation, 202 has an unparseable time; 203 is valid
	// on the date-only fallback.
	if len(games) != 1 || games[0].ProviderGameKey != "203" {
		t.Fatalf("games = %+v, want only 203", games)
	}
	if len(invalid) != 2 {
		t.Fatalf("invalid = %+v, want 2 rows", invalid)
	}
	if invalid[0].Key != "201" || invalid[1].Key != "202" {
		t.Errorf("invalid keys = %s, %s", invalid[0].Key, invalid[1].Key)
	}
}

func TestFetchGamesSurfacesAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "wrong-key")
	client.policy = retry.NewPolicy(2, time.Millisecond, time.Millisecond)

	_, _, err := client.FetchGames(context.Background(), time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected error on 401")
	}
}
