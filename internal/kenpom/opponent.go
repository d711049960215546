package kenpom

import (
	"context"
	"time"

	"github.com/cbbstats/kenpom-scraper/internal/retry"
)

// How far forward the resolver looks for a scheduled game, inclusive of
// "today". Schedule dates render like "Sat Feb 08".
const (
	opponentWindowDays = 4
	scheduleDateLayout = "Mon Jan 02"
)

var defaultOpponentRetry = retry.NewPolicy(4, 2*time.Second)

// NextOpponent finds a team's next scheduled opponent within the forward
// window. ok is false when no game falls inside the window; that is a
// normal outcome, not an error. Schedule fetches are retried with bounded
// backoff and surface *TransientFetchError once the budget is spent.
func NextOpponent(ctx context.Context, f Fetcher, sc *SeasonContext, team string, now time.Time) (opponent, result string, ok bool, err error) {
	if err := sc.CheckTeam(team); err != nil {
		return "", "", false, err
	}

	var entries []ScheduleEntry
	attempts, err := defaultOpponentRetry.Execute(ctx, func() error {
		var e error
		entries, e = GetSchedule(ctx, f, sc, team)
		return e
	})
	if err != nil {
		return "", "", false, &TransientFetchError{Attempts: attempts, Err: err}
	}

	byDate := make(map[string]ScheduleEntry, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		byDate[entries[i].Date] = entries[i]
	}
	for i := 0; i < opponentWindowDays; i++ {
		date := now.AddDate(0, 0, i).Format(scheduleDateLayout)
		if g, found := byDate[date]; found {
			return g.OpponentName, g.Result, true, nil
		}
	}
	return "", "", false, nil
}
