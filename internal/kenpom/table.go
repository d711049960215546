package kenpom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Table is a positionally parsed HTML table. Header holds the last header
// row (the one with leaf column names); Rows hold body cells padded to the
// header width.
type Table struct {
	Header []string
	Rows   [][]string
}

// locateTable returns the index-th table in document order. Table position
// is a page-schema contract; a missing table means the page layout changed
// or an error page came back.
func locateTable(doc *goquery.Document, page string, index int) (*goquery.Selection, error) {
	tables := doc.Find("table")
	if tables.Length() <= index {
		return nil, &StructureError{
			Page:   page,
			Detail: fmt.Sprintf("wanted table %d, page has %d", index, tables.Length()),
		}
	}
	return tables.Eq(index), nil
}

// parseTable flattens a table selection into cells. Cells spanning multiple
// columns are repeated across the span, which is how tournament-marker rows
// in schedule tables end up duplicating their label into adjacent columns.
func parseTable(sel *goquery.Selection) Table {
	var t Table

	theadRows := sel.Find("thead tr")
	var headNode *goquery.Selection
	if theadRows.Length() > 0 {
		headNode = theadRows.Last()
	} else if first := sel.Find("tr").First(); first.Length() > 0 {
		headNode = first
	}
	if headNode != nil {
		t.Header = expandCells(headNode)
	}

	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Closest("thead").Length() > 0 {
			return
		}
		if headNode != nil && len(tr.Nodes) > 0 && len(headNode.Nodes) > 0 && tr.Nodes[0] == headNode.Nodes[0] {
			return
		}
		cells := expandCells(tr)
		for len(cells) < len(t.Header) {
			cells = append(cells, "")
		}
		t.Rows = append(t.Rows, cells)
	})
	return t
}

func expandCells(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("th,td").Each(func(_ int, c *goquery.Selection) {
		txt := cellText(c)
		span := 1
		if v, err := strconv.Atoi(strings.TrimSpace(c.AttrOr("colspan", ""))); err == nil && v > 1 {
			span = v
		}
		for i := 0; i < span; i++ {
			cells = append(cells, txt)
		}
	})
	return cells
}

func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(strings.ReplaceAll(s.Text(), "\u00a0", " "))
}

// cell is a bounds-safe positional accessor.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// mangleDupes disambiguates repeated column names by appending .1, .2, ...
// to every occurrence after the first.
func mangleDupes(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if n := seen[h]; n > 0 {
			out[i] = fmt.Sprintf("%s.%d", h, n)
		} else {
			out[i] = h
		}
		seen[h]++
	}
	return out
}
