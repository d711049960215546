package kenpom

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// StatLine is one scouting-report statistic: the value, its national rank,
// and whether the page actually carried it. Older seasons are missing some
// stats; those stay unset rather than failing the extraction.
type StatLine struct {
	Value float64
	Rank  int
	Found bool
}

// ScoutingReport maps every known statistic code to its StatLine. The code
// set is schema: a report always contains all codes, found or not.
type ScoutingReport map[string]StatLine

// Every statistic code the scouting report can carry, in report order.
var scoutingCodes = []string{
	"OE", "DE", "Tempo", "APLO", "APLD",
	"eFG", "DeFG", "TOPct", "DTOPct", "ORPct", "DORPct", "FTR", "DFTR",
	"3Pct", "D3Pct", "2Pct", "D2Pct", "FTPct", "DFTPct",
	"BlockPct", "DBlockPct", "StlRate", "DStlRate", "NSTRate", "DNSTRate",
	"3PARate", "D3PARate", "ARate", "DARate",
	"PD3", "DPD3", "PD2", "DPD2", "PD1", "DPD1",
}

// EmptyScoutingReport returns a report with every known code unset.
func EmptyScoutingReport() ScoutingReport {
	rep := make(ScoutingReport, len(scoutingCodes))
	for _, c := range scoutingCodes {
		rep[c] = StatLine{}
	}
	return rep
}

// The scouting report is built client-side by an inline script assigning
// escaped HTML fragments into table cells. The grammar is a sequence of
//
//	$("td#<code>").html("<escaped fragment>");
//
// calls, grouped into an all-games block and a conference-only block behind
// a checkbox handler.
var (
	reStatCall      = regexp.MustCompile(`\$\("td#([A-Za-z0-9]+)"\)\.html\("(.+?)"\);`)
	reAllGamesBlock = regexp.MustCompile(`function tableStart\(\) \{([^}]+)}`)
	reConfOnlyBlock = regexp.MustCompile(`\$\(':checkbox'\)\.click\(function\(\) \{([^}]+)}`)
)

// GetScoutingReport extracts a team's per-season efficiency and rate stats
// with their national ranks. With conferenceOnly set, the conference-games
// variant of the report is read instead.
func GetScoutingReport(ctx context.Context, f Fetcher, sc *SeasonContext, team string, conferenceOnly bool) (ScoutingReport, error) {
	if err := sc.CheckTeam(team); err != nil {
		return nil, err
	}
	doc, err := fetchDoc(ctx, f, teamPageURL("team.php", team, sc.Season))
	if err != nil {
		return nil, err
	}

	blockRe := reAllGamesBlock
	if conferenceOnly {
		blockRe = reConfOnlyBlock
	}

	script, ok := findScoutingScript(doc, blockRe)
	if !ok {
		return nil, &StructureError{Page: "team", Detail: "scouting report script block not found"}
	}
	return parseScoutingBlock(blockRe.FindStringSubmatch(script)[1]), nil
}

// findScoutingScript picks the inline script whose body contains the wanted
// block. Matching on content rather than script position keeps layout drift
// from silently selecting the wrong script.
func findScoutingScript(doc *goquery.Document, blockRe *regexp.Regexp) (string, bool) {
	var body string
	found := false
	doc.Find(`script[type="text/javascript"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if src := s.AttrOr("src", ""); src != "" {
			return true
		}
		if text := s.Text(); blockRe.MatchString(text) {
			body, found = text, true
			return false
		}
		return true
	})
	return body, found
}

func parseScoutingBlock(block string) ScoutingReport {
	rep := EmptyScoutingReport()

	pairs := reStatCall.FindAllStringSubmatch(block, -1)
	// the first two assignments are header artifacts, not statistics
	if len(pairs) <= 2 {
		return rep
	}
	for _, p := range pairs[2:] {
		code, fragment := p[1], decodeJSString(p[2])
		value, rank, ok := parseStatFragment(fragment)
		if !ok {
			continue
		}
		rep[code] = StatLine{Value: value, Rank: rank, Found: true}
	}
	return rep
}

// parseStatFragment reads one decoded cell fragment: the stat value is the
// first anchor's text, the rank the first seed-styled span's text. Either
// missing means the pair is skipped, not the extraction aborted.
func parseStatFragment(fragment string) (value float64, rank int, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return 0, 0, false
	}
	a := doc.Find("a").First()
	seed := doc.Find("span.seed").First()
	if a.Length() == 0 || seed.Length() == 0 {
		return 0, 0, false
	}
	value, err = strconv.ParseFloat(strings.TrimSpace(a.Text()), 64)
	if err != nil {
		return 0, 0, false
	}
	rank, err = strconv.Atoi(strings.TrimSpace(seed.Text()))
	if err != nil {
		return 0, 0, false
	}
	return value, rank, true
}

// decodeJSString interprets the backslash escapes of a JS string literal
// (\uXXXX, \xNN, \n, \t, \r, \", \', \/, \\). strconv.Unquote cannot be
// used here: it rejects the JS-legal \' and \/ forms.
func decodeJSString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'u':
			if i+4 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(v))
					i += 4
					continue
				}
			}
			b.WriteByte('u')
		case 'x':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil && utf8.ValidRune(rune(v)) {
					b.WriteRune(rune(v))
					i += 2
					continue
				}
			}
			b.WriteByte('x')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
