package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plxcli/internal/config"
	"plxcli/pkg/contracts/domain"
)

func samplePages() []domain.PageResult {
	return []domain.PageResult{
		{
			Page:      0,
			SheetName: "Sedan Range",
			Tables: []domain.TableResult{
				{
					TableIndex: 0,
					Headers:    []string{"Model", "Price (EUR)"},
					Rows: []domain.StructuredRow{
						{
							"model": "Corolla",
							"price": map[string]any{"value": int64(28950), "currency": "EUR"},
						},
						{
							"model": "Camry",
							"price": map[string]any{"value": 39900.5},
							"Notes": nil,
						},
					},
				},
			},
		},
		{
			Page:      1,
			SheetName: "Preisliste DE",
			Tables: []domain.TableResult{
				{
					TableIndex: 0,
					Headers:    []string{"Modell", "Türen"},
					Rows: []domain.StructuredRow{
						{"model": "Yaris", "doors": int64(5)},
					},
				},
			},
		},
	}
}

func TestFlattenPages(t *testing.T) {
	headers, records := flattenPages(samplePages())

	// Coordinates lead; data columns follow in first-appearance order, with
	// nested paths flattened back to dotted names.
	assert.Equal(t, []string{
		"page", "sheet", "table",
		"model", "price.currency", "price.value", "Notes", "doors",
	}, headers)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"0", "Sedan Range", "0", "Corolla", "EUR", "28950", "", ""}, records[0])
	assert.Equal(t, []string{"0", "Sedan Range", "0", "Camry", "", "39900.5", "", ""}, records[1])
	assert.Equal(t, []string{"1", "Preisliste DE", "0", "Yaris", "", "", "", "5"}, records[2])
}

func TestFlattenRow(t *testing.T) {
	keys, cells := flattenRow(domain.StructuredRow{
		"model": "Corolla",
		"price": map[string]any{"value": int64(28950), "currency": "EUR"},
		"spec":  map[string]any{"engine": map[string]any{"power_kw": int64(90)}},
		"blank": nil,
	})

	// Keys come out sorted per nesting level.
	assert.Equal(t, []string{"blank", "model", "price.currency", "price.value", "spec.engine.power_kw"}, keys)
	assert.Equal(t, map[string]string{
		"blank":                "",
		"model":                "Corolla",
		"price.currency":       "EUR",
		"price.value":          "28950",
		"spec.engine.power_kw": "90",
	}, cells)
}

func TestWriteTablesCSV(t *testing.T) {
	tempDir := t.TempDir()
	exp := NewTableExporter(&config.Paths{OutputDir: tempDir})

	require.NoError(t, exp.WriteTablesCSV("tables.csv", samplePages()))

	content, err := os.ReadFile(filepath.Join(tempDir, "tables.csv"))
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(string(content), "\xef\xbb\xbf"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(content), "\xef\xbb\xbf")), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "page,sheet,table,model,price.currency,price.value,Notes,doors", lines[0])
	assert.Equal(t, "0,Sedan Range,0,Corolla,EUR,28950,,", lines[1])
	assert.Equal(t, "1,Preisliste DE,0,Yaris,,,,5", lines[3])
}

func TestWriteTablesCSV_NoRows(t *testing.T) {
	tempDir := t.TempDir()
	exp := NewTableExporter(&config.Paths{OutputDir: tempDir})

	// Degraded tables carry no rows; the file still gets its lead columns.
	pages := []domain.PageResult{{
		Page:   0,
		Tables: []domain.TableResult{{TableIndex: 0, RawMarkup: "<no frame>"}},
	}}
	require.NoError(t, exp.WriteTablesCSV("empty.csv", pages))

	content, err := os.ReadFile(filepath.Join(tempDir, "empty.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(content), "\xef\xbb\xbf")), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "page,sheet,table", lines[0])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "CVT", formatValue("CVT"))
	assert.Equal(t, "28950", formatValue(int64(28950)))
	assert.Equal(t, "28950.5", formatValue(28950.5))
	assert.Equal(t, "true", formatValue(true))
}
