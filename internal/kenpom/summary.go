package kenpom

import (
	"context"
	"fmt"
	"strings"
)

// AggregateTable is one of the site-wide summary tables (four factors, team
// stats, points distribution), keyed by team name for feature lookups.
// Order preserves page row order for deterministic export.
type AggregateTable struct {
	Columns []string
	Order   []string
	Teams   map[string][]string
}

// Features returns the team's stat columns as an ordered name→value view.
func (a *AggregateTable) Features(team string) ([]string, map[string]string, bool) {
	row, ok := a.Teams[team]
	if !ok {
		return nil, nil, false
	}
	vals := make(map[string]string, len(a.Columns))
	for i, col := range a.Columns {
		vals[col] = cell(row, i)
	}
	return a.Columns, vals, true
}

// GetFourFactors scrapes the efficiency/four-factors summary table.
func GetFourFactors(ctx context.Context, f Fetcher, sc *SeasonContext) (*AggregateTable, error) {
	return fetchAggregate(ctx, f, "summary", fmt.Sprintf("%s/summary.php?y=%d", baseURL, sc.Season), "")
}

// GetTeamStats scrapes the miscellaneous team stats table. With defense set
// the defensive variant is requested and every column is prefixed "Def." so
// the two sides can coexist in one flattened feature set.
func GetTeamStats(ctx context.Context, f Fetcher, sc *SeasonContext, defense bool) (*AggregateTable, error) {
	pageURL := fmt.Sprintf("%s/stats.php?y=%d", baseURL, sc.Season)
	prefix := ""
	if defense {
		pageURL += "&od=d"
		prefix = "Def."
	}
	return fetchAggregate(ctx, f, "stats", pageURL, prefix)
}

// GetPointDist scrapes the points-distribution summary table.
func GetPointDist(ctx context.Context, f Fetcher, sc *SeasonContext) (*AggregateTable, error) {
	return fetchAggregate(ctx, f, "pointdist", fmt.Sprintf("%s/pointdist.php?y=%d", baseURL, sc.Season), "")
}

func fetchAggregate(ctx context.Context, f Fetcher, page, pageURL, prefix string) (*AggregateTable, error) {
	doc, err := fetchDoc(ctx, f, pageURL)
	if err != nil {
		return nil, err
	}
	sel, err := locateTable(doc, page, 0)
	if err != nil {
		return nil, err
	}
	agg, err := buildAggregate(parseTable(sel), prefix)
	if err != nil {
		return nil, &StructureError{Page: page, Detail: err.Error()}
	}
	return agg, nil
}

// buildAggregate keys a summary table by team name. Each stat column is
// followed by its rank twin under the same header, so repeated names get a
// Rank suffix; team names lose their tournament seeds.
func buildAggregate(t Table, prefix string) (*AggregateTable, error) {
	teamCol := -1
	for i, h := range t.Header {
		if h == "Team" {
			teamCol = i
			break
		}
	}
	if teamCol < 0 {
		return nil, fmt.Errorf("no Team column in %v", t.Header)
	}

	agg := &AggregateTable{Teams: make(map[string][]string, len(t.Rows))}
	seen := make(map[string]bool, len(t.Header))
	keep := make([]int, 0, len(t.Header))
	for i, h := range t.Header {
		if i == teamCol || h == "" {
			continue
		}
		name := h
		if seen[h] {
			name = h + "Rank"
		}
		seen[h] = true
		agg.Columns = append(agg.Columns, prefix+name)
		keep = append(keep, i)
	}

	for _, row := range t.Rows {
		team := strings.TrimSpace(seedSuffix.ReplaceAllString(cell(row, teamCol), ""))
		if team == "" || team == "Team" {
			continue
		}
		vals := make([]string, len(keep))
		for j, i := range keep {
			vals[j] = cell(row, i)
		}
		if _, dup := agg.Teams[team]; !dup {
			agg.Order = append(agg.Order, team)
		}
		agg.Teams[team] = vals
	}
	return agg, nil
}
