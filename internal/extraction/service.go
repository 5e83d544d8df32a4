package extraction

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"plxcli/internal/config"
	apperrors "plxcli/internal/errors"
	"plxcli/internal/infrastructure"
	"plxcli/internal/mapping"
	"plxcli/internal/spreadsheet"
	"plxcli/pkg/contracts/domain"
)

// workbookExtensions are the spreadsheet container formats the renderer
// can open, keyed by lowercase extension.
var workbookExtensions = map[string]string{
	".xlsx": "xlsx",
	".xlsm": "xlsm",
	".xltx": "xltx",
	".xltm": "xltm",
}

// Service orchestrates extraction runs: it renders workbook sheets, runs
// the table pipeline over each page, and assembles per-file reports.
type Service struct {
	workers  int
	mapping  *mapping.Config
	renderer *spreadsheet.Renderer
	pipeline *Pipeline
	metrics  *infrastructure.ExtractionMetrics
	logger   *slog.Logger
}

// NewService wires an extraction service. mapCfg may be nil when no field
// mapping applies; metrics may be nil when metric collection is disabled.
func NewService(cfg *config.Config, mapCfg *mapping.Config, metrics *infrastructure.ExtractionMetrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Extraction.Workers
	if workers < 1 {
		workers = 1
	}
	return &Service{
		workers:  workers,
		mapping:  mapCfg,
		renderer: spreadsheet.NewRenderer(logger),
		pipeline: NewPipeline(logger),
		metrics:  metrics,
		logger:   logger.With("component", "service"),
	}
}

// ResolveMapping loads the mapping document selected by the configuration.
// An empty selector loads the shipped default through the lazy cache. A
// selector that resolves to no document is not an error: extraction then
// passes headers through verbatim.
func ResolveMapping(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*mapping.Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	selector := cfg.Extraction.MappingFile
	if selector == "" {
		mapCfg, err := mapping.Default()
		if err != nil {
			return nil, err
		}
		if mapCfg == nil {
			logger.Warn("no default mapping shipped with this install, headers pass through verbatim")
		}
		return mapCfg, nil
	}

	mapCfg, err := mapping.Load(paths.ResolveMappingFile(selector))
	if err != nil {
		return nil, err
	}
	if mapCfg == nil {
		logger.Warn("mapping selector matched no document, headers pass through verbatim",
			"selector", selector)
		return nil, nil
	}
	logger.Info("field mapping loaded", "path", mapCfg.Source, "entries", mapCfg.Len())
	return mapCfg, nil
}

// ExtractWorkbook renders every non-empty sheet of the workbook at path
// and extracts its tables, one PageResult per rendered sheet in workbook
// order. Sheet markup renders sequentially (one file handle), then sheets
// are parsed and mapped concurrently, bounded by the worker limit.
func (s *Service) ExtractWorkbook(ctx context.Context, path string) ([]domain.PageResult, error) {
	sheets, err := s.renderer.RenderWorkbook(path)
	if err != nil {
		return nil, err
	}
	infrastructure.RecordSheetsRendered(ctx, s.metrics, len(sheets))

	pages := make([]domain.PageResult, len(sheets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sheet := range sheets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			elements := []domain.Element{{Category: domain.CategoryTable, Text: sheet.Markup}}
			pages[i] = pageFromResult(i, sheet.Name, s.pipeline.Extract(elements, s.mapping))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "workbook extracted",
		"file", filepath.Base(path),
		"sheets", len(sheets))
	return pages, nil
}

// ExtractElements runs the pipeline over an externally supplied element
// batch, reported as a single page 0.
func (s *Service) ExtractElements(ctx context.Context, elements []domain.Element) []domain.PageResult {
	result := s.pipeline.Extract(elements, s.mapping)
	s.logger.DebugContext(ctx, "element batch extracted",
		"elements", len(elements),
		"tables", len(result.Tables))
	return []domain.PageResult{pageFromResult(0, "", result)}
}

// ExtractFile dispatches on the input extension: spreadsheet containers go
// through the workbook path, .json inputs are read as an element list, and
// anything else is an unsupported input. Every run gets its own trace ID,
// carried through logs and reported as RunID.
func (s *Service) ExtractFile(ctx context.Context, path string) (*domain.ParseReport, error) {
	runID := infrastructure.GenerateTraceID()
	ctx = infrastructure.WithTraceID(ctx, runID)
	start := time.Now()

	ext := strings.ToLower(filepath.Ext(path))
	fileType, isWorkbook := workbookExtensions[ext]

	var pages []domain.PageResult
	var err error
	switch {
	case isWorkbook:
		pages, err = s.ExtractWorkbook(ctx, path)
	case ext == ".json":
		fileType = "json"
		var elements []domain.Element
		if elements, err = loadElements(path); err == nil {
			pages = s.ExtractElements(ctx, elements)
		}
	default:
		fileType = strings.TrimPrefix(ext, ".")
		err = apperrors.NewInputError("cannot extract from this input", apperrors.ErrUnsupportedInput).
			WithContext("path", path).
			WithContext("extension", ext)
	}

	duration := time.Since(start)
	tables, degraded, rows := tallyPages(pages)
	infrastructure.RecordExtractionMetrics(ctx, s.metrics, fileType, duration, tables, degraded, rows, err)

	if err != nil {
		s.logger.ErrorContext(ctx, "extraction failed",
			"file", filepath.Base(path),
			"error", err)
		return nil, err
	}

	report := &domain.ParseReport{
		Status:         "success",
		FileName:       filepath.Base(path),
		FileType:       fileType,
		Pages:          len(pages),
		ProcessingTime: duration.Seconds(),
		DegradedTables: degraded,
		RunID:          runID,
		Data:           pages,
	}
	s.logger.InfoContext(ctx, "extraction complete",
		"file", report.FileName,
		"file_type", fileType,
		"pages", report.Pages,
		"tables", tables,
		"degraded_tables", degraded,
		"rows", rows,
		"duration", duration)
	return report, nil
}

// VehicleRows flattens every materialized row in pages onto the canonical
// vehicle schema, stamping each row with its source coordinates.
func VehicleRows(pages []domain.PageResult, fileName string) []domain.VehicleRow {
	var out []domain.VehicleRow
	for _, page := range pages {
		for _, tbl := range page.Tables {
			for _, row := range tbl.Rows {
				src := &domain.SourceInfo{
					FileName:   fileName,
					Page:       page.Page,
					TableIndex: tbl.TableIndex,
				}
				out = append(out, domain.RowFromStructured(row, src))
			}
		}
	}
	return out
}

func pageFromResult(page int, sheetName string, result domain.ExtractionResult) domain.PageResult {
	pr := domain.PageResult{
		Page:      page,
		SheetName: sheetName,
		Tables:    result.Tables,
	}
	if result.DegradedCount > 0 {
		pr.Metadata = map[string]any{"degraded_tables": result.DegradedCount}
	}
	return pr
}

func tallyPages(pages []domain.PageResult) (tables, degraded, rows int) {
	for _, page := range pages {
		tables += len(page.Tables)
		for _, tbl := range page.Tables {
			rows += len(tbl.Rows)
		}
		if page.Metadata != nil {
			if n, ok := page.Metadata["degraded_tables"].(int); ok {
				degraded += n
			}
		}
	}
	return tables, degraded, rows
}

func loadElements(path string) ([]domain.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewInputError("element list not found", apperrors.ErrFileNotFound).
				WithContext("path", path)
		}
		return nil, apperrors.NewInputError("read element list", err).WithContext("path", path)
	}
	var elements []domain.Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, apperrors.NewInputError("element list is not valid JSON", err).
			WithContext("path", path)
	}
	return elements, nil
}
