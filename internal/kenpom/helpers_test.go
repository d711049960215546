package kenpom

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fakeFetcher serves canned pages by URL.
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls map[string]int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[url]++
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	page, ok := f.pages[url]
	if !ok {
		return "", &NetworkError{URL: url, StatusCode: 404}
	}
	return page, nil
}

func testSeasonContext(season int, teams ...string) *SeasonContext {
	sc := &SeasonContext{Season: season, Teams: teams, teamSet: make(map[string]struct{}, len(teams))}
	for _, t := range teams {
		sc.teamSet[t] = struct{}{}
	}
	return sc
}

func mustDoc(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return doc
}
