package main

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// clientRefColumn names the column holding the client reference in a batch
// sheet. Every other column is a question ID.
const clientRefColumn = "client_ref"

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "batch: parse %s", path)
	}
	return rows, nil
}

// readXLSXRows reads the first sheet of a workbook.
func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("batch: %s has no sheets", path)
	}

	rows := make([][]string, 0, len(f.Sheets[0].Rows))
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// entriesFromRows turns a sheet with a header row into batch entries.
// Numeric headers are risk question IDs and take a score; other headers are
// match question IDs and take an option value, with "|" between multiple
// values. Blank cells are left unanswered and blank rows are skipped.
func entriesFromRows(rows [][]string, questions []model.MatchQuestion) ([]batchEntry, error) {
	if len(rows) == 0 {
		return nil, eris.New("batch: sheet is empty")
	}
	header := make([]string, len(rows[0]))
	refCol := -1
	for j, h := range rows[0] {
		header[j] = strings.TrimSpace(h)
		if strings.EqualFold(header[j], clientRefColumn) {
			refCol = j
		}
	}
	if refCol < 0 {
		return nil, eris.Errorf("batch: header has no %s column", clientRefColumn)
	}

	modes := make(map[string]model.AnswerMode, len(questions))
	for _, q := range questions {
		modes[q.ID] = q.Mode
	}

	var entries []batchEntry
	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		e := batchEntry{}
		if refCol < len(row) {
			e.ClientRef = strings.TrimSpace(row[refCol])
		}
		for j, h := range header {
			if j == refCol || j >= len(row) || h == "" {
				continue
			}
			v := strings.TrimSpace(row[j])
			if v == "" {
				continue
			}
			if id, err := strconv.Atoi(h); err == nil {
				score, err := strconv.Atoi(v)
				if err != nil {
					return nil, eris.Errorf("batch: row %d question %d: score %q is not a number", line, id, v)
				}
				if e.Risk == nil {
					e.Risk = model.RiskAnswers{}
				}
				e.Risk[id] = score
				continue
			}
			if e.Match == nil {
				e.Match = model.AnswerSet{}
			}
			values := strings.Split(v, "|")
			if modes[h] == model.ModeMultiple || len(values) > 1 {
				e.Match[h] = model.MultipleAnswer(values)
			} else {
				e.Match[h] = model.SingleAnswer(v)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
