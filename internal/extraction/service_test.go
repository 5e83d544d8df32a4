package extraction

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"plxcli/internal/config"
	apperrors "plxcli/internal/errors"
	"plxcli/internal/mapping"
	"plxcli/pkg/contracts/domain"
)

// buildWorkbookFixture writes a two-market Toyota pricelist workbook plus a
// blank sheet and returns its path.
func buildWorkbookFixture(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	en := "Sedan Range"
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), en))
	writeRows(t, f, en, [][]interface{}{
		{"Model", "Engine", "Transmission", "Drivetrain", "Price (EUR)", "Doors"},
		{"Corolla", "1.8L Hybrid", "CVT", "FWD", 28950, 4},
		{"Corolla", "2.0L Hybrid", "CVT", "FWD", 32450, 4},
		{"Camry", "2.5L Hybrid", "CVT", "FWD", 39900, 4},
		{"Camry", "2.5L Hybrid AWD", "CVT", "AWD", 42500, 4},
	})

	de := "Preisliste DE"
	_, err := f.NewSheet(de)
	require.NoError(t, err)
	writeRows(t, f, de, [][]interface{}{
		{"Modell", "Motor", "Getriebe", "Antrieb", "Preis (EUR)", "Türen"},
		{"Corolla", "1.8L Hybrid", "CVT", "Frontantrieb", 29450, 4},
		{"Yaris", "1.5L Hybrid", "CVT", "Frontantrieb", 22900, 5},
	})

	// A blank sheet never renders and never becomes a page.
	_, err = f.NewSheet("Notes")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "toyota_pricelist_2026.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func writeRows(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
}

func serviceMapping(t *testing.T) *mapping.Config {
	t.Helper()
	doc := `mappings:
  model:
    patterns: ['model', 'modell']
    schema_field: model
  engine:
    patterns: ['engine', 'motor']
    schema_field: engine.description
  transmission:
    patterns: ['transmission', 'getriebe']
    schema_field: transmission
  drivetrain:
    patterns: ['drivetrain', 'antrieb']
    schema_field: drivetrain
  price:
    patterns: ['price', 'preis']
    schema_field: price.value
  doors:
    patterns: ['doors', 'türen']
    schema_field: doors
`
	cfg, err := mapping.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func newTestService(t *testing.T, workers int) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Extraction.Workers = workers
	return NewService(cfg, serviceMapping(t), nil, discardLogger())
}

func TestServiceExtractWorkbook(t *testing.T) {
	path := buildWorkbookFixture(t)
	svc := newTestService(t, 2)

	pages, err := svc.ExtractWorkbook(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	// Pages come back in workbook sheet order regardless of which worker
	// finished first.
	assert.Equal(t, 0, pages[0].Page)
	assert.Equal(t, "Sedan Range", pages[0].SheetName)
	assert.Equal(t, 1, pages[1].Page)
	assert.Equal(t, "Preisliste DE", pages[1].SheetName)

	require.Len(t, pages[0].Tables, 1)
	table := pages[0].Tables[0]
	assert.Equal(t, 0, table.TableIndex)
	assert.Equal(t,
		[]string{"Model", "Engine", "Transmission", "Drivetrain", "Price (EUR)", "Doors"},
		table.Headers)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, domain.StructuredRow{
		"model":        "Corolla",
		"engine":       map[string]any{"description": "1.8L Hybrid"},
		"transmission": "CVT",
		"drivetrain":   "FWD",
		"price":        map[string]any{"value": int64(28950)},
		"doors":        int64(4),
	}, table.Rows[0])

	require.Len(t, pages[1].Tables, 1)
	deRows := pages[1].Tables[0].Rows
	require.Len(t, deRows, 2)
	assert.Equal(t, domain.StructuredRow{
		"model":        "Yaris",
		"engine":       map[string]any{"description": "1.5L Hybrid"},
		"transmission": "CVT",
		"drivetrain":   "Frontantrieb",
		"price":        map[string]any{"value": int64(22900)},
		"doors":        int64(5),
	}, deRows[1])
}

func TestServiceExtractWorkbook_InputError(t *testing.T) {
	svc := newTestService(t, 1)

	_, err := svc.ExtractWorkbook(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
	assert.True(t, apperrors.IsInput(err))
}

func TestServiceExtractElements(t *testing.T) {
	svc := newTestService(t, 1)

	pages := svc.ExtractElements(context.Background(), []domain.Element{
		{Category: domain.CategoryTitle, Text: "Overview"},
		{Category: domain.CategoryTable, Text: pricelistMarkup},
	})
	require.Len(t, pages, 1)
	assert.Equal(t, 0, pages[0].Page)
	assert.Empty(t, pages[0].SheetName)
	require.Len(t, pages[0].Tables, 1)
	assert.Len(t, pages[0].Tables[0].Rows, 2)
}

func TestServiceExtractFile(t *testing.T) {
	t.Run("workbook input", func(t *testing.T) {
		path := buildWorkbookFixture(t)
		svc := newTestService(t, 2)

		report, err := svc.ExtractFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "success", report.Status)
		assert.Equal(t, "toyota_pricelist_2026.xlsx", report.FileName)
		assert.Equal(t, "xlsx", report.FileType)
		assert.Equal(t, 2, report.Pages)
		assert.Len(t, report.Data, 2)
		assert.Zero(t, report.DegradedTables)
		assert.NotEmpty(t, report.RunID)
		assert.GreaterOrEqual(t, report.ProcessingTime, 0.0)
	})

	t.Run("element list input", func(t *testing.T) {
		elements := []domain.Element{
			{Category: domain.CategoryTable, Text: pricelistMarkup},
			{Category: domain.CategoryTable, Text: "<div>defective</div>"},
		}
		data, err := json.Marshal(elements)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "layout.json")
		require.NoError(t, os.WriteFile(path, data, 0o644))

		svc := newTestService(t, 1)
		report, err := svc.ExtractFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "json", report.FileType)
		assert.Equal(t, 1, report.Pages)
		require.Len(t, report.Data, 1)
		assert.Len(t, report.Data[0].Tables, 2)
		assert.Equal(t, 1, report.DegradedTables)
		assert.Equal(t, map[string]any{"degraded_tables": 1}, report.Data[0].Metadata)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		svc := newTestService(t, 1)

		_, err := svc.ExtractFile(context.Background(), "brochure.pdf")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedInput)
		assert.True(t, apperrors.IsInput(err))
	})

	t.Run("missing element list", func(t *testing.T) {
		svc := newTestService(t, 1)

		_, err := svc.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
	})

	t.Run("malformed element list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		svc := newTestService(t, 1)
		_, err := svc.ExtractFile(context.Background(), path)
		require.Error(t, err)
		assert.True(t, apperrors.IsInput(err))
	})
}

func TestVehicleRows(t *testing.T) {
	path := buildWorkbookFixture(t)
	svc := newTestService(t, 2)

	pages, err := svc.ExtractWorkbook(context.Background(), path)
	require.NoError(t, err)

	rows := VehicleRows(pages, "toyota_pricelist_2026.xlsx")
	require.Len(t, rows, 6)

	first := rows[0]
	assert.Equal(t, "Corolla", first.Model)
	assert.Equal(t, "CVT", first.Transmission)
	assert.Equal(t, "FWD", first.Drivetrain)
	assert.Equal(t, 4, first.Doors)
	require.NotNil(t, first.Engine)
	assert.Equal(t, "1.8L Hybrid", first.Engine.Description)
	require.NotNil(t, first.Price)
	assert.Equal(t, 28950.0, first.Price.Value)
	assert.Equal(t, &domain.SourceInfo{
		FileName:   "toyota_pricelist_2026.xlsx",
		Page:       0,
		TableIndex: 0,
	}, first.Source)

	last := rows[5]
	assert.Equal(t, "Yaris", last.Model)
	require.NotNil(t, last.Source)
	assert.Equal(t, 1, last.Source.Page)
}

func TestResolveMapping(t *testing.T) {
	writeMapping := func(t *testing.T, dir, name, body string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}
	doc := "mappings:\n  model:\n    patterns: ['model']\n    schema_field: model\n"

	t.Run("explicit path", func(t *testing.T) {
		dir := t.TempDir()
		path := writeMapping(t, dir, "fleet.yaml", doc)
		cfg := config.Default()
		cfg.Extraction.MappingFile = path

		mapCfg, err := ResolveMapping(cfg, &config.Paths{MappingsDir: dir}, discardLogger())
		require.NoError(t, err)
		require.NotNil(t, mapCfg)
		assert.Equal(t, path, mapCfg.Source)
		assert.Equal(t, 1, mapCfg.Len())
	})

	t.Run("bare name resolves inside the mappings dir", func(t *testing.T) {
		dir := t.TempDir()
		writeMapping(t, dir, "fleet.yaml", doc)
		cfg := config.Default()
		cfg.Extraction.MappingFile = "fleet"

		mapCfg, err := ResolveMapping(cfg, &config.Paths{MappingsDir: dir}, discardLogger())
		require.NoError(t, err)
		require.NotNil(t, mapCfg)
		assert.Equal(t, 1, mapCfg.Len())
	})

	t.Run("selector matching nothing leaves headers verbatim", func(t *testing.T) {
		cfg := config.Default()
		cfg.Extraction.MappingFile = "no_such_mapping"

		mapCfg, err := ResolveMapping(cfg, &config.Paths{MappingsDir: t.TempDir()}, discardLogger())
		require.NoError(t, err)
		assert.Nil(t, mapCfg)
	})

	t.Run("broken mapping document fails", func(t *testing.T) {
		dir := t.TempDir()
		path := writeMapping(t, dir, "broken.yaml", "mappings:\n  model: just a string\n")
		cfg := config.Default()
		cfg.Extraction.MappingFile = path

		_, err := ResolveMapping(cfg, &config.Paths{MappingsDir: dir}, discardLogger())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeMapping, apperrors.GetErrorType(err))
	})
}
