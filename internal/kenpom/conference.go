package kenpom

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ConferenceStanding is one team's row in a conference standings table.
type ConferenceStanding struct {
	Team   string
	Seed   string
	Fields map[string]string
}

// ValidConferences lists the conference codes linked from a conference
// page. Any conference page works; B10 is just a stable entry point.
func ValidConferences(ctx context.Context, f Fetcher, sc *SeasonContext) ([]string, error) {
	doc, err := fetchDoc(ctx, f, fmt.Sprintf("%s/conf.php?c=B10&y=%d", baseURL, sc.Season))
	if err != nil {
		return nil, err
	}
	tables := doc.Find("table")
	if tables.Length() == 0 {
		return nil, &StructureError{Page: "conf", Detail: "no tables on conference page"}
	}
	var confs []string
	tables.Last().Find("a").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if i := strings.LastIndexByte(href, '='); i >= 0 && i+1 < len(href) {
			confs = append(confs, href[i+1:])
		}
	})
	if len(confs) == 0 {
		return nil, &StructureError{Page: "conf", Detail: "no conference links found"}
	}
	sort.Strings(confs)
	return confs, nil
}

// GetStandings scrapes a conference's standings table. Tournament seeds are
// split out of team names into their own field; repeated stat headers get a
// Rank suffix.
func GetStandings(ctx context.Context, f Fetcher, sc *SeasonContext, conf string) ([]ConferenceStanding, error) {
	doc, err := fetchDoc(ctx, f, fmt.Sprintf("%s/conf.php?c=%s&y=%d", baseURL, conf, sc.Season))
	if err != nil {
		return nil, err
	}
	sel, err := locateTable(doc, "conf", 0)
	if err != nil {
		return nil, err
	}
	t := parseTable(sel)

	header := rankRenameDupes(t.Header)
	teamCol := -1
	for i, h := range header {
		if h == "Team" {
			teamCol = i
			break
		}
	}
	if teamCol < 0 {
		return nil, &StructureError{Page: "conf", Detail: "standings table has no Team column"}
	}

	var standings []ConferenceStanding
	for _, row := range t.Rows {
		raw := cell(row, teamCol)
		team := strings.TrimSpace(seedSuffix.ReplaceAllString(raw, ""))
		if team == "" || team == "Team" {
			continue
		}
		s := ConferenceStanding{
			Team:   team,
			Seed:   strings.TrimSpace(firstDigits(raw)),
			Fields: make(map[string]string, len(header)),
		}
		for i, h := range header {
			if i == teamCol || h == "" {
				continue
			}
			s.Fields[h] = cell(row, i)
		}
		standings = append(standings, s)
	}
	return standings, nil
}

// rankRenameDupes renames the second occurrence of a stat header to its
// rank twin (stat columns are immediately followed by their national rank
// under the same name).
func rankRenameDupes(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if seen[h] && h != "" {
			out[i] = h + "Rank"
		} else {
			out[i] = h
		}
		seen[h] = true
	}
	return out
}

func firstDigits(s string) string {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}
