package kenpom

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// ScheduleEntry is one played (or scheduled) game from a team's schedule
// table. Postseason is empty for regular-season games and carries the
// cleaned tournament name for games inside a tournament run.
type ScheduleEntry struct {
	Date         string
	TeamRank     string
	OpponentRank string
	OpponentName string
	Result       string
	Possessions  string
	Location     string
	Record       string
	Conference   string
	Postseason   string
}

// Normalized schedule shape. The raw table carries two decorative columns
// (dropped here) and, for seasons 2010 and earlier, lacks the team-rank
// column entirely.
var scheduleHeader = []string{
	"Date", "Team Rank", "Opponent Rank", "Opponent Name", "Result",
	"Possession Number", "Location", "Record", "Conference",
}

var tournamentSuffix = regexp.MustCompile(`(?:\sConference)?\sTournament.*$`)

// GetSchedule scrapes a team's season schedule, segmented by postseason
// tournament.
func GetSchedule(ctx context.Context, f Fetcher, sc *SeasonContext, team string) ([]ScheduleEntry, error) {
	if err := sc.CheckTeam(team); err != nil {
		return nil, err
	}
	doc, err := fetchDoc(ctx, f, teamPageURL("team.php", team, sc.Season))
	if err != nil {
		return nil, err
	}
	sel, err := locateTable(doc, "team", 1)
	if err != nil {
		return nil, err
	}
	norm, err := normalizeSchedule(parseTable(sel))
	if err != nil {
		return nil, err
	}
	return segmentSchedule(norm), nil
}

// normalizeSchedule reconciles the two known raw layouts into the 9-column
// shape. A 10-column table (pre-2011, no team rank) gets an empty team-rank
// column inserted at position 1; an 11-column table passes its values
// through untouched.
func normalizeSchedule(t Table) (Table, error) {
	width := len(t.Header)
	if width == 0 && len(t.Rows) > 0 {
		width = len(t.Rows[0])
	}
	if width != 10 && width != 11 {
		return Table{}, &StructureError{Page: "team schedule", Detail: fmt.Sprintf("unexpected column count %d", width)}
	}

	out := Table{Header: scheduleHeader}
	for _, row := range t.Rows {
		for len(row) < width {
			row = append(row, "")
		}
		if width == 10 {
			row = append(row[:1:1], append([]string{""}, row[1:]...)...)
		}
		// drop the decorative columns at raw positions 6 and 10
		out.Rows = append(out.Rows, []string{
			cell(row, 0), cell(row, 1), cell(row, 2), cell(row, 3), cell(row, 4),
			cell(row, 5), cell(row, 7), cell(row, 8), cell(row, 9),
		})
	}
	return out, nil
}

// segmentSchedule tags each game with the tournament it belongs to and
// drops the rows that are not real games. A marker row's label applies from
// the marker through (but excluding) the next marker; two adjacent markers
// give the first an empty span, which is fine.
func segmentSchedule(t Table) []ScheduleEntry {
	type marker struct {
		idx   int
		label string
	}
	var markers []marker
	for i, row := range t.Rows {
		tr := cell(row, 1)
		if containsAny(tr, "Tournament", "Postseason") {
			markers = append(markers, marker{idx: i, label: tournamentSuffix.ReplaceAllString(cell(row, 0), "")})
		}
	}

	labels := make([]string, len(t.Rows))
	for mi, m := range markers {
		end := len(t.Rows)
		if mi+1 < len(markers) {
			end = markers[mi+1].idx
		}
		for i := m.idx; i < end; i++ {
			labels[i] = m.label
		}
	}

	entries := make([]ScheduleEntry, 0, len(t.Rows))
	for i, row := range t.Rows {
		date := cell(row, 0)
		// marker rows duplicate their label across every column, and the
		// table repeats its header mid-body; neither is a game
		if date == cell(row, 4) || date == "Date" {
			continue
		}
		entries = append(entries, ScheduleEntry{
			Date:         date,
			TeamRank:     cell(row, 1),
			OpponentRank: cell(row, 2),
			OpponentName: cell(row, 3),
			Result:       cell(row, 4),
			Possessions:  cell(row, 5),
			Location:     cell(row, 6),
			Record:       cell(row, 7),
			Conference:   cell(row, 8),
			Postseason:   labels[i],
		})
	}
	return entries
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
