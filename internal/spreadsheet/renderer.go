// Package spreadsheet renders workbook sheets into table markup that the
// extraction pipeline can consume. Merged regions become rowspan/colspan
// attributes on their anchor cell; the covered cells are suppressed so the
// markup mirrors the visual layout of the sheet.
package spreadsheet

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "plxcli/internal/errors"
	"plxcli/pkg/contracts/domain"
)

// escapeMarkup rewrites the four characters with meaning inside table
// markup. A single replacer pass keeps '&' from double-escaping.
var escapeMarkup = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

type gridRef struct {
	row int
	col int
}

type span struct {
	rows int
	cols int
}

// Renderer converts workbook sheets to table markup.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a renderer. A nil logger falls back to slog.Default.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger.With(slog.String("component", "spreadsheet"))}
}

// RenderWorkbook opens the workbook at path and renders every sheet that
// holds content, in workbook sheet order. An unreadable file is an input
// error and aborts the invocation.
func (r *Renderer) RenderWorkbook(path string) ([]domain.SheetTable, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			err = apperrors.ErrFileNotFound
		}
		return nil, apperrors.NewInputError("open workbook", err).WithContext("path", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewInputError("open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	var tables []domain.SheetTable
	for _, sheet := range f.GetSheetList() {
		markup, err := r.RenderSheet(f, sheet)
		if err != nil {
			return nil, err
		}
		if markup == "" {
			r.logger.Debug("skipping blank sheet", slog.String("sheet", sheet))
			continue
		}
		tables = append(tables, domain.SheetTable{Name: sheet, Markup: markup})
	}

	r.logger.Info("workbook rendered",
		slog.String("path", path),
		slog.Int("sheets", len(tables)))
	return tables, nil
}

// RenderSheet renders one sheet to table markup. It returns the empty
// string when no cell in the sheet carries content; a sheet frame is never
// emitted for blank sheets.
func (r *Renderer) RenderSheet(f *excelize.File, sheet string) (string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", apperrors.NewInputError("read sheet", err).WithContext("sheet", sheet)
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return "", apperrors.NewInputError("read merged regions", err).WithContext("sheet", sheet)
	}

	// Anchors carry the span of their region; every other covered cell is
	// suppressed from the output. Regions never overlap.
	mergeMap := make(map[gridRef]span, len(merges))
	suppressed := make(map[gridRef]bool)
	maxRow, maxCol := len(rows), 0
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}

	for _, m := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			return "", apperrors.NewInputError("resolve merge range", err).WithContext("sheet", sheet)
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			return "", apperrors.NewInputError("resolve merge range", err).WithContext("sheet", sheet)
		}
		mergeMap[gridRef{startRow, startCol}] = span{rows: endRow - startRow + 1, cols: endCol - startCol + 1}
		for row := startRow; row <= endRow; row++ {
			for col := startCol; col <= endCol; col++ {
				if row == startRow && col == startCol {
					continue
				}
				suppressed[gridRef{row, col}] = true
			}
		}
		if endRow > maxRow {
			maxRow = endRow
		}
		if endCol > maxCol {
			maxCol = endCol
		}
	}

	var b strings.Builder
	b.WriteString("<table>\n")
	hasContent := false
	for row := 1; row <= maxRow; row++ {
		var rowBuf strings.Builder
		wroteCell := false
		for col := 1; col <= maxCol; col++ {
			if suppressed[gridRef{row, col}] {
				continue
			}
			text := cellAt(rows, row, col)
			if text != "" {
				hasContent = true
			}
			// The first sheet row renders as header cells no matter what
			// it holds.
			tag := "td"
			if row == 1 {
				tag = "th"
			}
			attrs := ""
			if sp, ok := mergeMap[gridRef{row, col}]; ok {
				if sp.rows > 1 {
					attrs += fmt.Sprintf(` rowspan="%d"`, sp.rows)
				}
				if sp.cols > 1 {
					attrs += fmt.Sprintf(` colspan="%d"`, sp.cols)
				}
			}
			fmt.Fprintf(&rowBuf, "<%s%s>%s</%s>", tag, attrs, escapeMarkup.Replace(text), tag)
			wroteCell = true
		}
		// A row whose every cell is covered by a merge renders nothing.
		if !wroteCell {
			continue
		}
		b.WriteString("<tr>")
		b.WriteString(rowBuf.String())
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>")

	if !hasContent {
		return "", nil
	}
	return b.String(), nil
}

// cellAt returns the trimmed value at a 1-based grid position. Positions
// beyond the stored row data are blank.
func cellAt(rows [][]string, row, col int) string {
	if row > len(rows) {
		return ""
	}
	cells := rows[row-1]
	if col > len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col-1])
}
