package kenpom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fourFactorsPage = `<html><body>
<table>
<thead>
<tr><th colspan="3"></th><th colspan="4">Offense</th></tr>
<tr><th>Rk</th><th>Team</th><th>Conf</th><th>AdjT</th><th>AdjT</th><th>AdjO</th><th>AdjO</th></tr>
</thead>
<tbody>
<tr><td>1</td><td>UConn 1</td><td>BE</td><td>65.8</td><td>201</td><td>127.4</td><td>1</td></tr>
<tr><td>2</td><td>Purdue 1</td><td>B10</td><td>67.0</td><td>150</td><td>125.0</td><td>2</td></tr>
</tbody>
</table>
</body></html>`

func TestGetFourFactors(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://kenpom.com/summary.php?y=2024": fourFactorsPage,
	}}
	sc := testSeasonContext(2024, "UConn", "Purdue")

	agg, err := GetFourFactors(context.Background(), f, sc)
	require.NoError(t, err)

	// rank twins share a header and get the Rank suffix
	assert.Equal(t, []string{"Rk", "Conf", "AdjT", "AdjTRank", "AdjO", "AdjORank"}, agg.Columns)
	assert.Equal(t, []string{"UConn", "Purdue"}, agg.Order)

	_, vals, ok := agg.Features("UConn")
	require.True(t, ok)
	assert.Equal(t, "65.8", vals["AdjT"])
	assert.Equal(t, "201", vals["AdjTRank"])
	assert.Equal(t, "127.4", vals["AdjO"])

	_, _, ok = agg.Features("Nowhere St.")
	assert.False(t, ok)
}

func TestGetTeamStatsDefensePrefix(t *testing.T) {
	page := `<html><body><table>
<thead><tr><th>Team</th><th>3P%</th><th>3P%</th></tr></thead>
<tbody><tr><td>UConn 1</td><td>32.0</td><td>40</td></tr></tbody>
</table></body></html>`
	f := &fakeFetcher{pages: map[string]string{
		"https://kenpom.com/stats.php?y=2024":      page,
		"https://kenpom.com/stats.php?y=2024&od=d": page,
	}}
	sc := testSeasonContext(2024, "UConn")

	off, err := GetTeamStats(context.Background(), f, sc, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"3P%", "3P%Rank"}, off.Columns)

	def, err := GetTeamStats(context.Background(), f, sc, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Def.3P%", "Def.3P%Rank"}, def.Columns)
}

func TestBuildAggregateNoTeamColumn(t *testing.T) {
	_, err := buildAggregate(Table{Header: []string{"A", "B"}}, "")
	require.Error(t, err)
}

func TestTeamAggregatesFeaturesOrder(t *testing.T) {
	agg := testAggregates()
	keys, vals, ok := agg.Features("Maryland")
	require.True(t, ok)
	// four factors, team stats, points dist, then defensive team stats
	assert.Equal(t, []string{"AdjTempo", "AdjOE", "3P%", "A%", "FT", "2P", "3P", "Def.3P%", "Def.A%"}, keys)
	assert.Equal(t, "64.9", vals["AdjTempo"])
	assert.Equal(t, "29.9", vals["Def.3P%"])

	_, _, ok = agg.Features("Nowhere St.")
	assert.False(t, ok)
}
