package exporter

import (
	"fmt"
	"sort"
	"strconv"

	"plxcli/internal/config"
	apperrors "plxcli/internal/errors"
	"plxcli/pkg/contracts/domain"
)

// TableExporter writes extracted tables to CSV files.
type TableExporter struct {
	csvWriter *CSVWriter
}

// NewTableExporter creates a new table exporter
func NewTableExporter(paths *config.Paths) *TableExporter {
	return &TableExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// WriteTablesCSV writes every materialized row of every table into one CSV
// file. Data columns are the union of flattened field paths across all rows,
// ordered by first appearance; page, sheet and table coordinates lead each
// row. Rows missing a column leave it blank.
func (t *TableExporter) WriteTablesCSV(outputPath string, pages []domain.PageResult) error {
	headers, records := flattenPages(pages)
	err := t.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
	if err != nil {
		return apperrors.NewExportError("write tables csv", err).WithContext("path", outputPath)
	}
	return nil
}

// flattenPages turns the structured rows of all pages into a rectangular
// grid: a header union plus one record per row.
func flattenPages(pages []domain.PageResult) ([]string, [][]string) {
	type flatRow struct {
		page  string
		sheet string
		table string
		cells map[string]string
	}

	var dataCols []string
	seen := make(map[string]bool)
	var flats []flatRow
	for _, page := range pages {
		for _, tbl := range page.Tables {
			for _, row := range tbl.Rows {
				keys, cells := flattenRow(row)
				for _, key := range keys {
					if !seen[key] {
						seen[key] = true
						dataCols = append(dataCols, key)
					}
				}
				flats = append(flats, flatRow{
					page:  strconv.Itoa(page.Page),
					sheet: page.SheetName,
					table: strconv.Itoa(tbl.TableIndex),
					cells: cells,
				})
			}
		}
	}

	headers := append([]string{"page", "sheet", "table"}, dataCols...)
	records := make([][]string, 0, len(flats))
	for _, fr := range flats {
		record := make([]string, 0, len(headers))
		record = append(record, fr.page, fr.sheet, fr.table)
		for _, col := range dataCols {
			record = append(record, fr.cells[col])
		}
		records = append(records, record)
	}
	return headers, records
}

// flattenRow collapses nested maps back into dotted column names. Map keys
// are visited in sorted order so output is deterministic.
func flattenRow(row domain.StructuredRow) ([]string, map[string]string) {
	var keys []string
	flat := make(map[string]string)

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		names := make([]string, 0, len(node))
		for name := range node {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			path := name
			if prefix != "" {
				path = prefix + "." + name
			}
			if child, ok := node[name].(map[string]any); ok {
				walk(path, child)
				continue
			}
			keys = append(keys, path)
			flat[path] = formatValue(node[name])
		}
	}
	walk("", map[string]any(row))
	return keys, flat
}

// formatValue renders one materialized cell value for CSV output. Null
// becomes the empty cell.
func formatValue(val any) string {
	switch x := val.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return formatInt(x)
	case float64:
		return formatFloat(x)
	case bool:
		return formatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
