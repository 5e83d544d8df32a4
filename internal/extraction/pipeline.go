package extraction

import (
	"log/slog"
	"strings"

	"plxcli/internal/mapping"
	"plxcli/internal/markup"
	"plxcli/pkg/contracts/domain"
)

// Pipeline converts layout elements into structured table results.
// It is stateless and safe for concurrent use.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline creates a pipeline. A nil logger falls back to slog.Default.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger.With("component", "extraction")}
}

// Extract processes the table elements of one element batch. Elements whose
// category is not the table tag are skipped and consume no table index, as
// are table elements with blank text. A table whose markup fails to parse
// degrades to a result with empty headers and rows and the raw markup
// preserved, counted in DegradedCount, without aborting the batch.
func (p *Pipeline) Extract(elements []domain.Element, cfg *mapping.Config) domain.ExtractionResult {
	result := domain.ExtractionResult{Tables: []domain.TableResult{}}

	idx := 0
	for _, element := range elements {
		if element.Category != domain.CategoryTable {
			continue
		}
		raw := element.Text
		// Layout models sometimes emit empty table stubs; they carry
		// nothing to parse and consume no table index.
		if strings.TrimSpace(raw) == "" {
			continue
		}

		parsed, err := markup.Parse(raw)
		if err != nil {
			p.logger.Warn("table markup failed to parse, keeping raw markup",
				"table_index", idx,
				"error", err)
			result.Tables = append(result.Tables, domain.TableResult{
				TableIndex: idx,
				Headers:    []string{},
				Rows:       []domain.StructuredRow{},
				RawMarkup:  raw,
			})
			result.DegradedCount++
			idx++
			continue
		}

		fields := cfg.BuildColumnMap(parsed.Headers)
		result.Tables = append(result.Tables, domain.TableResult{
			TableIndex: idx,
			Headers:    parsed.Headers,
			Rows:       MaterializeRows(parsed.Rows, fields),
			RawMarkup:  raw,
		})
		idx++
	}

	return result
}
