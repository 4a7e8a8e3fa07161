package feeds

import (
	"context"
	"fmt"
	"strings"
)

type Fixture struct {
	ID        int64
	Date      string
	HomeID    int64
	HomeName  string
	HomeGoals int
	AwayID    int64
	AwayName  string
	AwayGoals int
}

type GoalEvent struct {
	Player string
	Minute int
}

type fixturesResp struct {
	Response []struct {
		Fixture struct {
			ID   int64  `json:"id"`
			Date string `json:"date"`
		} `json:"fixture"`
		Teams struct {
			Home struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
		Goals struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"goals"`
	} `json:"response"`
}

type eventsResp struct {
	Response []struct {
		Type string `json:"type"`
		Time struct {
			Elapsed int `json:"elapsed"`
		} `json:"time"`
		Player struct {
			Name string `json:"name"`
		} `json:"player"`
	} `json:"response"`
}

func (c *Client) footballHeaders() map[string]string {
	return map[string]string{
		"X-RapidAPI-Key":  c.RapidAPIKey,
		"X-RapidAPI-Host": "api-football-v1.p.rapidapi.com",
	}
}

// LastFixtures fetches a team's n most recent matches.
func (c *Client) LastFixtures(ctx context.Context, teamID int64, n int) ([]Fixture, error) {
	u := fmt.Sprintf("%s/v3/fixtures?team=%d&last=%d", c.FootballBaseURL, teamID, n)

	var decoded fixturesResp
	if err := c.getJSON(ctx, u, c.footballHeaders(), &decoded); err != nil {
		return nil, err
	}

	out := make([]Fixture, 0, len(decoded.Response))
	for _, r := range decoded.Response {
		f := Fixture{
			ID:       r.Fixture.ID,
			Date:     strings.SplitN(r.Fixture.Date, "T", 2)[0],
			HomeID:   r.Teams.Home.ID,
			HomeName: r.Teams.Home.Name,
			AwayID:   r.Teams.Away.ID,
			AwayName: r.Teams.Away.Name,
		}
		if r.Goals.Home != nil {
			f.HomeGoals = *r.Goals.Home
		}
		if r.Goals.Away != nil {
			f.AwayGoals = *r.Goals.Away
		}
		out = append(out, f)
	}
	return out, nil
}

// GoalEvents fetches the goal events of one fixture.
func (c *Client) GoalEvents(ctx context.Context, fixtureID int64) ([]GoalEvent, error) {
	u := fmt.Sprintf("%s/v3/fixtures/events?fixture=%d", c.FootballBaseURL, fixtureID)

	var decoded eventsResp
	if err := c.getJSON(ctx, u, c.footballHeaders(), &decoded); err != nil {
		return nil, err
	}

	var out []GoalEvent
	for _, e := range decoded.Response {
		if e.Type != "Goal" {
			continue
		}
		out = append(out, GoalEvent{Player: e.Player.Name, Minute: e.Time.Elapsed})
	}
	return out, nil
}

// resultIcon marks the match outcome from the given team's perspective.
func resultIcon(f Fixture, teamID int64) string {
	us, them := f.HomeGoals, f.AwayGoals
	if f.AwayID == teamID {
		us, them = them, us
	}
	switch {
	case us > them:
		return "🟢"
	case us < them:
		return "🔴"
	default:
		return "🟡"
	}
}

// FormatFixtures renders the fixture lookup reply. goals maps fixture ID to
// its goal events; a missing entry renders as unavailable.
func FormatFixtures(teamName string, teamID int64, fixtures []Fixture, goals map[int64][]GoalEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Last %d matches for %s:\n\n", len(fixtures), strings.ToUpper(teamName))
	for _, f := range fixtures {
		fmt.Fprintf(&b, "%s %s: %s %d - %d %s\n", resultIcon(f, teamID), f.Date, f.HomeName, f.HomeGoals, f.AwayGoals, f.AwayName)

		evs, ok := goals[f.ID]
		switch {
		case !ok:
			b.WriteString("Goals: unavailable\n\n")
		case len(evs) == 0:
			b.WriteString("Goals: none\n\n")
		default:
			parts := make([]string, 0, len(evs))
			for _, e := range evs {
				parts = append(parts, fmt.Sprintf("%s (%d')", e.Player, e.Minute))
			}
			fmt.Fprintf(&b, "Goals: %s\n\n", strings.Join(parts, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
