// Package markup recovers rectangular tables from HTML-like table markup,
// as produced by the spreadsheet renderer or upstream layout analysis.
// Parsing is tolerant: malformed and unclosed tags are normalized before
// the structural pass.
package markup

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "plxcli/internal/errors"
	"plxcli/pkg/contracts/domain"
)

// pending tracks a rowspan cell that still owes values to upcoming rows.
type pending struct {
	value string
	rows  int
}

// Parse converts table markup into a ParsedTable. The first table element
// is used; its first row provides the header labels and every data row is
// expanded to the same width. Rows and columns whose body cells are all
// blank are dropped after header extraction. It fails with a parse error
// when the markup holds no table frame.
func Parse(markup string) (*domain.ParsedTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, apperrors.NewParseError("normalize markup", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, apperrors.NewParseError("markup has no table element", apperrors.ErrNoTable)
	}

	grid := expandGrid(table)
	if len(grid) == 0 {
		return nil, apperrors.NewParseError("table frame is empty", apperrors.ErrNoTable)
	}

	headers := grid[0]
	body := grid[1:]

	// Rows with no content vanish first, then columns whose remaining body
	// cells are all blank. Header labels alone do not keep a column alive.
	body = dropBlankRows(body)
	headers, body = dropBlankColumns(headers, body)

	return &domain.ParsedTable{Headers: headers, Rows: body}, nil
}

// expandGrid walks the table rows and expands rowspan/colspan attributes,
// replicating each spanning value into every covered slot so the result is
// rectangular.
func expandGrid(table *goquery.Selection) [][]string {
	tableNode := table.Get(0)
	rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		// Rows of nested tables belong to their own frame.
		return tr.Closest("table").Get(0) == tableNode
	})

	var grid [][]string
	carry := make(map[int]*pending)

	rows.Each(func(_ int, tr *goquery.Selection) {
		var row []string
		col := 0

		consumeCarry := func() {
			for {
				p, ok := carry[col]
				if !ok {
					break
				}
				row = append(row, p.value)
				p.rows--
				if p.rows == 0 {
					delete(carry, col)
				}
				col++
			}
		}

		consumeCarry()
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			consumeCarry()
			text := strings.TrimSpace(cell.Text())
			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			for i := 0; i < colspan; i++ {
				if rowspan > 1 {
					carry[col] = &pending{value: text, rows: rowspan - 1}
				}
				row = append(row, text)
				col++
			}
		})
		consumeCarry()

		grid = append(grid, row)
	})

	// Ragged markup rows pad out to the widest row.
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range grid {
		for len(row) < width {
			row = append(row, "")
		}
		grid[i] = row
	}
	return grid
}

// spanAttr reads a span attribute, defaulting to 1 for anything absent or
// unusable.
func spanAttr(cell *goquery.Selection, name string) int {
	raw, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func dropBlankRows(body [][]string) [][]string {
	kept := body[:0]
	for _, row := range body {
		blank := true
		for _, cell := range row {
			if cell != "" {
				blank = false
				break
			}
		}
		if !blank {
			kept = append(kept, row)
		}
	}
	return kept
}

func dropBlankColumns(headers []string, body [][]string) ([]string, [][]string) {
	keep := make([]bool, len(headers))
	for _, row := range body {
		for i, cell := range row {
			if i < len(keep) && cell != "" {
				keep[i] = true
			}
		}
	}

	outHeaders := make([]string, 0, len(headers))
	for i, h := range headers {
		if keep[i] {
			outHeaders = append(outHeaders, h)
		}
	}
	outBody := make([][]string, 0, len(body))
	for _, row := range body {
		out := make([]string, 0, len(outHeaders))
		for i, cell := range row {
			if keep[i] {
				out = append(out, cell)
			}
		}
		outBody = append(outBody, out)
	}
	return outHeaders, outBody
}
