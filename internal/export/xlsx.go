// Package export writes the derived records to a spreadsheet workbook, one
// sheet per aggregate table plus the combined player feed.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/cbbstats/kenpom-scraper/internal/kenpom"
)

// Column renames applied on the player sheet; the shooting percentage
// columns come out of the stat table as positional dupes.
var playerRenames = map[string]string{
	"Pct.1": "Player.2Pt%",
	"Pct.2": "Player.3Pt%",
}

// WriteWorkbook writes the four-factor, team-stat and points-distribution
// tables plus the player feed to path. The player sheet keeps only records
// with an upcoming opponent; failed teams contribute nothing.
func WriteWorkbook(path string, ff, ts, pd *kenpom.AggregateTable, results []kenpom.TeamResult) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := writeAggregateSheet(wb, "TeamFourFactors", ff); err != nil {
		return err
	}
	if err := writeAggregateSheet(wb, "TeamStats", ts); err != nil {
		return err
	}
	if err := writeAggregateSheet(wb, "PointsDist", pd); err != nil {
		return err
	}
	if err := writePlayerSheet(wb, "PlayerStats", results); err != nil {
		return err
	}

	wb.DeleteSheet("Sheet1")
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeAggregateSheet(wb *excelize.File, sheet string, t *kenpom.AggregateTable) error {
	if _, err := wb.NewSheet(sheet); err != nil {
		return err
	}
	header := append([]string{"Team"}, t.Columns...)
	if err := setRow(wb, sheet, 1, header); err != nil {
		return err
	}
	for i, team := range t.Order {
		_, vals, ok := t.Features(team)
		if !ok {
			continue
		}
		row := make([]string, 0, len(header))
		row = append(row, team)
		for _, col := range t.Columns {
			row = append(row, vals[col])
		}
		if err := setRow(wb, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writePlayerSheet(wb *excelize.File, sheet string, results []kenpom.TeamResult) error {
	if _, err := wb.NewSheet(sheet); err != nil {
		return err
	}

	// column union across teams, first-seen order
	var columns []string
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Players == nil {
			continue
		}
		for _, c := range r.Players.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	header := make([]string, len(columns))
	for i, c := range columns {
		if renamed, ok := playerRenames[c]; ok {
			header[i] = renamed
		} else {
			header[i] = c
		}
	}
	if err := setRow(wb, sheet, 1, header); err != nil {
		return err
	}

	rowNum := 2
	for _, r := range results {
		if r.Players == nil {
			continue
		}
		for _, p := range r.Players.Players {
			if !p.HasOpponent() {
				continue
			}
			row := make([]string, len(columns))
			for i, c := range columns {
				row[i] = p.Fields[c]
			}
			if err := setRow(wb, sheet, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}
	}
	return nil
}

// setRow writes one sheet row, storing numeric-looking cells as numbers.
func setRow(wb *excelize.File, sheet string, row int, cells []string) error {
	vals := make([]interface{}, len(cells))
	for i, c := range cells {
		if f, err := strconv.ParseFloat(c, 64); err == nil && c != "" {
			vals[i] = f
		} else {
			vals[i] = c
		}
	}
	cellRef, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return wb.SetSheetRow(sheet, cellRef, &vals)
}
