package kenpom

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// PlayerRecord is one denormalized row of the player-expanded feed: season
// stats, recent-game minutes, team aggregate features and (when a game is
// coming up) next-opponent features. Absent fields stay absent — a player
// with four recorded games has four Game -k fields, not six zeros.
type PlayerRecord struct {
	Name   string
	Fields map[string]string
}

// Has reports whether the record carries the field.
func (p PlayerRecord) Has(key string) bool {
	_, ok := p.Fields[key]
	return ok
}

// Float parses the field as a number.
func (p PlayerRecord) Float(key string) (float64, bool) {
	v, ok := p.Fields[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// HasOpponent reports whether the record carries next-opponent features.
func (p PlayerRecord) HasOpponent() bool { return p.Has("NextOpponent") }

// TeamPlayers is the aggregation output for one team: the records plus the
// flattened column order they should render in.
type TeamPlayers struct {
	Team    string
	Columns []string
	Players []PlayerRecord
}

// TeamResult is the tagged per-team outcome of a batch run. Either Players
// or Err is set; recoverable failures never abort the other teams.
type TeamResult struct {
	Team    string
	Players *TeamPlayers
	Err     error
}

// BatchOptions tunes the multi-team aggregation run.
type BatchOptions struct {
	// Politeness delay range between successive team fetches. Purely to
	// stay under upstream rate limiting; not a correctness requirement.
	DelayMin time.Duration
	DelayMax time.Duration
	// Now anchors the next-opponent lookup window.
	Now time.Time
}

const recentGames = 6

// minutes-matrix columns that are not players
var nonPlayerColumns = map[string]bool{
	"MinutesMatrixTM":   true,
	"Starting Lineup #": true,
	"TM":                true,
	"":                  true,
}

// GetPlayersExpanded builds one record per player for a team, combining the
// season stat table, the recent-games minutes matrix, team aggregate
// features and the next opponent's aggregate features.
func GetPlayersExpanded(ctx context.Context, f Fetcher, sc *SeasonContext, team string, agg *TeamAggregates, now time.Time) (*TeamPlayers, error) {
	if err := sc.CheckTeam(team); err != nil {
		return nil, err
	}
	doc, err := fetchDoc(ctx, f, teamPageURL("player-expanded.php", team, sc.Season))
	if err != nil {
		return nil, err
	}

	statsSel, err := locateTable(doc, "player-expanded", 0)
	if err != nil {
		return nil, err
	}
	statCols, records, order := parseSeasonStats(parseTable(statsSel))

	// Pages without a conference table carry one table fewer and shift the
	// minutes matrix up a slot.
	minutesIdx := 1
	if doc.Find("table").Length() == 3 {
		minutesIdx = 2
	}
	minutesSel, err := locateTable(doc, "player-expanded", minutesIdx)
	if err != nil {
		return nil, err
	}
	players := applyMinutesMatrix(parseTable(minutesSel), records, &order)

	tp := &TeamPlayers{Team: team}
	tp.Columns = append(tp.Columns, "Number", "Name")
	tp.Columns = append(tp.Columns, statCols...)
	for k := 1; k <= recentGames; k++ {
		tp.Columns = append(tp.Columns, gameField(k))
	}
	tp.Columns = append(tp.Columns, "Team")

	teamKeys, teamVals, ok := agg.Features(team)
	if !ok {
		return nil, &StructureError{Page: "summary", Detail: fmt.Sprintf("team %q missing from aggregate tables", team)}
	}
	for _, k := range teamKeys {
		tp.Columns = append(tp.Columns, "Team."+k)
	}

	opponent, result, hasOpp, err := NextOpponent(ctx, f, sc, team, now)
	if err != nil {
		return nil, err
	}
	var oppKeys []string
	var oppVals map[string]string
	if hasOpp {
		oppKeys, oppVals, ok = agg.Features(opponent)
		if !ok {
			return nil, &StructureError{Page: "summary", Detail: fmt.Sprintf("opponent %q missing from aggregate tables", opponent)}
		}
		tp.Columns = append(tp.Columns, "NextOpponent", "KenPomResult")
		for _, k := range oppKeys {
			tp.Columns = append(tp.Columns, "Opponent."+k)
		}
	}

	for _, name := range order {
		rec := records[name]
		if !players[name] {
			// in the season table but not the recent-games matrix: kept,
			// but carries no team/opponent features and gets filtered by
			// has-upcoming-opponent consumers
			tp.Players = append(tp.Players, rec)
			continue
		}
		rec.Fields["Team"] = team
		for _, k := range teamKeys {
			rec.Fields["Team."+k] = teamVals[k]
		}
		if hasOpp {
			rec.Fields["NextOpponent"] = opponent
			rec.Fields["KenPomResult"] = result
			for _, k := range oppKeys {
				rec.Fields["Opponent."+k] = oppVals[k]
			}
		}
		tp.Players = append(tp.Players, rec)
	}
	return tp, nil
}

// parseSeasonStats normalizes the season per-player stat table: only rows
// whose leading column is numeric are players (the rest are sub-headers),
// names lose their rank annotations, and mixed cells keep their leading
// numeric token.
func parseSeasonStats(t Table) (statCols []string, records map[string]PlayerRecord, order []string) {
	header := mangleDupes(t.Header)
	if len(header) > 0 {
		header[0] = "Number"
	}
	if len(header) > 1 {
		header[1] = "Name"
	}
	statCols = append(statCols, header[2:]...)

	records = make(map[string]PlayerRecord)
	for _, row := range t.Rows {
		number := cell(row, 0)
		if _, err := strconv.ParseFloat(strings.TrimSpace(number), 64); err != nil {
			continue
		}
		name := cleanPlayerName(cell(row, 1))
		rec := PlayerRecord{Name: name, Fields: make(map[string]string, len(header)+16)}
		rec.Fields["Number"] = number
		rec.Fields["Name"] = name
		for i := 2; i < len(header); i++ {
			rec.Fields[header[i]] = leadingToken(cell(row, i))
		}
		if _, dup := records[name]; !dup {
			order = append(order, name)
		}
		records[name] = rec
	}
	return statCols, records, order
}

// applyMinutesMatrix folds the last N game rows of the minutes matrix into
// Game -k fields (k=1 most recent) and returns the set of players seen.
// Players in the matrix but not in the stat table get a fresh record.
func applyMinutesMatrix(t Table, records map[string]PlayerRecord, order *[]string) map[string]bool {
	players := make(map[string]bool)
	for k := 1; k <= recentGames && k <= len(t.Rows); k++ {
		row := t.Rows[len(t.Rows)-k]
		sums := make(map[string]float64)
		for i, h := range t.Header {
			if nonPlayerColumns[h] {
				continue
			}
			name := strings.TrimSpace(h)
			v, err := strconv.ParseFloat(strings.TrimSpace(cell(row, i)), 64)
			if err != nil {
				v = 0
			}
			sums[name] += v
			players[name] = true
		}
		for name, v := range sums {
			rec, ok := records[name]
			if !ok {
				rec = PlayerRecord{Name: name, Fields: map[string]string{"Name": name}}
				records[name] = rec
				*order = append(*order, name)
			}
			rec.Fields[gameField(k)] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	return players
}

func gameField(k int) string { return fmt.Sprintf("Game -%d", k) }

// cleanPlayerName strips the rank annotations the page appends to player
// display names. The trailing " 0".." 19" pass removes lingering
// player-of-the-year seeds; it is a best-effort heuristic and over-strips
// names that legitimately contain a space-digit sequence.
func cleanPlayerName(name string) string {
	name = strings.ReplaceAll(name, " National Rank", "")
	name = strings.ReplaceAll(name, "National Rank", "")
	for x := 0; x < 20; x++ {
		name = strings.ReplaceAll(name, fmt.Sprintf(" %d", x), "")
	}
	return strings.TrimSpace(name)
}

// leadingToken reduces a cell mixing a number with trailing annotation text
// to its leading token.
func leadingToken(v string) string {
	if i := strings.IndexByte(v, ' '); i >= 0 {
		return v[:i]
	}
	return v
}

// PlayersExpandedBatch aggregates player records team by team. Recoverable
// failures (layout drift, fetch errors, exhausted retries) are recorded on
// the team's result and the batch moves on; anything unexpected aborts the
// whole run. A randomized politeness delay separates successive teams.
func PlayersExpandedBatch(ctx context.Context, f Fetcher, sc *SeasonContext, teams []string, agg *TeamAggregates, opts BatchOptions) ([]TeamResult, error) {
	if opts.DelayMin == 0 && opts.DelayMax == 0 {
		opts.DelayMin, opts.DelayMax = 2*time.Second, 5*time.Second
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	results := make([]TeamResult, 0, len(teams))
	for i, team := range teams {
		if i > 0 {
			time.Sleep(politenessDelay(opts.DelayMin, opts.DelayMax))
		}
		logrus.WithFields(logrus.Fields{"team": team, "season": sc.Season}).Info("aggregating players")

		tp, err := GetPlayersExpanded(ctx, f, sc, team, agg, opts.Now)
		if err != nil {
			if !recoverable(err) {
				return nil, fmt.Errorf("aggregate %s: %w", team, err)
			}
			logrus.WithFields(logrus.Fields{"team": team}).WithError(err).Warn("skipping team")
			results = append(results, TeamResult{Team: team, Err: err})
			continue
		}
		results = append(results, TeamResult{Team: team, Players: tp})
	}
	return results, nil
}

// recoverable reports whether an error is one of the per-team failure kinds
// the batch is allowed to skip past.
func recoverable(err error) bool {
	var se *StructureError
	var ne *NetworkError
	var te *TransientFetchError
	return errors.As(err, &se) || errors.As(err, &ne) || errors.As(err, &te)
}

func politenessDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
