package kenpom

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const earliestSeason = 1999

var (
	// NCAA tournament seeds (and play-in asterisks) appended to team names
	// on the ratings page.
	seedSuffix = regexp.MustCompile(`\d+\**`)

	ratingsHeading = regexp.MustCompile(`(\d{4})\s+Pomeroy College Basketball Ratings`)
)

// SeasonContext is the per-batch resolution of "which season, which teams".
// It is computed once and threaded through every team-scoped operation so
// the team list is never re-fetched ambiently per call.
type SeasonContext struct {
	Season int
	Teams  []string

	teamSet map[string]struct{}
}

// ResolveSeason validates season (0 means current) against the published
// range and loads the season's team list.
func ResolveSeason(ctx context.Context, f Fetcher, season int) (*SeasonContext, error) {
	current, err := CurrentSeason(ctx, f)
	if err != nil {
		return nil, err
	}
	if season == 0 {
		season = current
	}
	if season < earliestSeason || season > current {
		return nil, &InvalidSeasonError{Season: season, Current: current}
	}
	teams, err := ValidTeams(ctx, f, season)
	if err != nil {
		return nil, err
	}
	sc := &SeasonContext{Season: season, Teams: teams, teamSet: make(map[string]struct{}, len(teams))}
	for _, t := range teams {
		sc.teamSet[t] = struct{}{}
	}
	return sc, nil
}

// CheckTeam verifies that team exists in this season's team list.
func (sc *SeasonContext) CheckTeam(team string) error {
	if _, ok := sc.teamSet[team]; !ok {
		return &UnknownTeamError{Team: team, Season: sc.Season}
	}
	return nil
}

// CurrentSeason reads the season year from the ratings page heading.
func CurrentSeason(ctx context.Context, f Fetcher) (int, error) {
	html, err := f.Fetch(ctx, baseURL+"/")
	if err != nil {
		return 0, err
	}
	m := ratingsHeading.FindStringSubmatch(html)
	if m == nil {
		return 0, &StructureError{Page: "ratings", Detail: "season heading not found"}
	}
	return strconv.Atoi(m[1])
}

// ValidTeams scrapes the season's team names from the ratings table.
// Tournament seeds are stripped and repeated in-body header rows dropped.
func ValidTeams(ctx context.Context, f Fetcher, season int) ([]string, error) {
	doc, err := fetchDoc(ctx, f, fmt.Sprintf("%s/?y=%d", baseURL, season))
	if err != nil {
		return nil, err
	}
	sel, err := locateTable(doc, "ratings", 0)
	if err != nil {
		return nil, err
	}
	t := parseTable(sel)

	var teams []string
	for _, row := range t.Rows {
		name := strings.TrimSpace(seedSuffix.ReplaceAllString(cell(row, 1), ""))
		if name == "" || name == "Team" {
			continue
		}
		teams = append(teams, name)
	}
	if len(teams) == 0 {
		return nil, &StructureError{Page: "ratings", Detail: "no team names in ratings table"}
	}
	return teams, nil
}
