package kenpom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoutingPage = `<html><body>
<table><tr><td>ratings</td></tr></table>
<table><tr><td>schedule</td></tr></table>
<script type="text/javascript" src="/assets/site.js"></script>
<script type="text/javascript">
function tableStart() {
$("td#ARow").html("Category");
$("td#BRow").html("Value");
$("td#OE").html("<a href=\"stats.php?s=RankAdjOE\">112.3<\/a> <span class=\"seed\">14<\/span>");
$("td#DE").html("<a href=\"stats.php?s=RankAdjDE\">95.1<\/a> <span class=\"seed\">3<\/span>");
$("td#Tempo").html("<a href=\"stats.php?s=RankAdjTempo\">68.2<\/a>");
$("td#eFG").html("<span class=\"seed\">7<\/span>");
}
$(':checkbox').click(function() {
$("td#ARow").html("Category");
$("td#BRow").html("Value");
$("td#OE").html("<a href=\"stats.php?s=RankAdjOE\">105.0<\/a> <span class=\"seed\">50<\/span>");
});
</script>
</body></html>`

func scoutingFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{
		"https://kenpom.com/team.php?team=Maryland&y=2024": scoutingPage,
	}}
}

func TestGetScoutingReport(t *testing.T) {
	sc := testSeasonContext(2024, "Maryland")
	rep, err := GetScoutingReport(context.Background(), scoutingFetcher(), sc, "Maryland", false)
	require.NoError(t, err)

	assert.Equal(t, StatLine{Value: 112.3, Rank: 14, Found: true}, rep["OE"])
	assert.Equal(t, StatLine{Value: 95.1, Rank: 3, Found: true}, rep["DE"])

	// malformed pairs are skipped, not fatal
	assert.False(t, rep["Tempo"].Found, "value without a rank span")
	assert.False(t, rep["eFG"].Found, "rank without a value anchor")

	// the code set is schema: every known code is present even when unset
	for _, code := range scoutingCodes {
		_, ok := rep[code]
		assert.True(t, ok, "missing code %s", code)
	}
}

func TestGetScoutingReportConferenceOnly(t *testing.T) {
	sc := testSeasonContext(2024, "Maryland")
	rep, err := GetScoutingReport(context.Background(), scoutingFetcher(), sc, "Maryland", true)
	require.NoError(t, err)

	// the checkbox block carries different numbers than the all-games block
	assert.Equal(t, StatLine{Value: 105.0, Rank: 50, Found: true}, rep["OE"])
	assert.False(t, rep["DE"].Found)
}

func TestGetScoutingReportMissingScript(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://kenpom.com/team.php?team=Maryland&y=2024": "<html><body><table><tr><td>x</td></tr></table></body></html>",
	}}
	sc := testSeasonContext(2024, "Maryland")

	_, err := GetScoutingReport(context.Background(), f, sc, "Maryland", false)
	var se *StructureError
	require.ErrorAs(t, err, &se)
}

func TestParseScoutingBlockEmpty(t *testing.T) {
	rep := parseScoutingBlock("")
	require.Len(t, rep, len(scoutingCodes))
	for code, line := range rep {
		assert.False(t, line.Found, "code %s should be unset", code)
	}
}

func TestDecodeJSString(t *testing.T) {
	cases := []struct{ in, want string }{
		{`<a href=\"x\">1.2<\/a>`, `<a href="x">1.2</a>`},
		{`Saint Mary\u2019s`, "Saint Mary\u2019s"},
		{`tab\there`, "tab\there"},
		{`\x3cb\x3e`, "<b>"},
		{`no escapes`, "no escapes"},
		{`trailing backslash \`, `trailing backslash \`},
		{`\u12`, `u12`}, // malformed unicode escape degrades, never panics
	}
	for _, c := range cases {
		assert.Equal(t, c.want, decodeJSString(c.in), "input %q", c.in)
	}
}
