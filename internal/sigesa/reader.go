// Package sigesa reads the SIGESA episode export (.xlsx) into raw episode
// records. Headers are matched by exact canonical name after case/accent
// normalization, with no fuzzy matching; unmapped columns are ignored.
package sigesa

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/normalize"
)

// ReadEpisodes parses the first sheet of a SIGESA export. The first row is
// the header row; every following row becomes one RawEpisode.
func ReadEpisodes(path string) ([]model.RawEpisode, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("export %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	canonical := make(map[string]bool, len(model.AllFields))
	for _, f := range model.AllFields {
		canonical[f] = true
	}

	// Column index → canonical field name.
	colField := make(map[int]string)
	for i, h := range rows[0] {
		name := normalize.Header(h)
		if canonical[name] {
			colField[i] = name
		}
	}
	if len(colField) == 0 {
		return nil, fmt.Errorf("sheet %q has no recognized columns", sheets[0])
	}

	episodes := make([]model.RawEpisode, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(colField))
		empty := true
		for i, cell := range row {
			field, ok := colField[i]
			if !ok {
				continue
			}
			rec[field] = cell
			if cell != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		episodes = append(episodes, model.FromRecord(rec))
	}
	return episodes, nil
}
