package exporter

import (
	"fmt"

	"plxcli/internal/config"
	apperrors "plxcli/internal/errors"
	"plxcli/pkg/contracts/domain"
)

// RowExporter writes canonical vehicle rows.
type RowExporter struct {
	csvWriter *CSVWriter
}

// NewRowExporter creates a new vehicle row exporter
func NewRowExporter(paths *config.Paths) *RowExporter {
	return &RowExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// WriteRowsCSV writes vehicle rows to a CSV file with the fixed canonical
// column set.
func (r *RowExporter) WriteRowsCSV(outputPath string, rows []domain.VehicleRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToCSVRow(row))
	}
	err := r.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   vehicleRowHeaders(),
		Records:   records,
		BOMPrefix: true,
	})
	if err != nil {
		return apperrors.NewExportError("write rows csv", err).WithContext("path", outputPath)
	}
	return nil
}

// RowStream appends vehicle rows to a single CSV file across multiple
// extractions. Batch runs open one stream and feed it each file's rows as
// they are extracted instead of buffering the whole directory.
type RowStream struct {
	stream *StreamWriter
	path   string
}

// StreamRows opens a row stream at outputPath and writes the canonical
// header row.
func (r *RowExporter) StreamRows(outputPath string) (*RowStream, error) {
	stream, err := r.csvWriter.CreateStreamWriter(outputPath, vehicleRowHeaders())
	if err != nil {
		return nil, apperrors.NewExportError("create rows csv stream", err).WithContext("path", outputPath)
	}
	return &RowStream{stream: stream, path: outputPath}, nil
}

// Append writes the given rows to the stream.
func (s *RowStream) Append(rows []domain.VehicleRow) error {
	for i, row := range rows {
		if err := s.stream.WriteRecord(rowToCSVRow(row)); err != nil {
			return apperrors.NewExportError(fmt.Sprintf("write row %d", i), err).WithContext("path", s.path)
		}
	}
	return nil
}

// Close flushes and closes the underlying CSV file.
func (s *RowStream) Close() error {
	if err := s.stream.Close(); err != nil {
		return apperrors.NewExportError("close rows csv stream", err).WithContext("path", s.path)
	}
	return nil
}

// vehicleRowHeaders returns the CSV headers for vehicle rows
func vehicleRowHeaders() []string {
	return []string{
		"Make", "Model", "Variant", "Trim", "BodyType",
		"EngineDescription", "FuelType", "PowerKW", "PowerHP", "Displacement",
		"Transmission", "Drivetrain", "Doors", "Seats",
		"Price", "Currency", "IncludesTax", "MSRP", "EffectiveDate", "Country",
		"SourceFile", "Page", "TableIndex",
	}
}

// rowToCSVRow converts a vehicle row to a CSV row
func rowToCSVRow(row domain.VehicleRow) []string {
	engine := row.Engine
	if engine == nil {
		engine = &domain.EngineInfo{}
	}
	price := row.Price
	if price == nil {
		price = &domain.PriceInfo{}
	}
	src := row.Source
	if src == nil {
		src = &domain.SourceInfo{}
	}
	return []string{
		row.Make,
		row.Model,
		row.Variant,
		row.Trim,
		row.BodyType,
		engine.Description,
		engine.FuelType,
		formatFloat(engine.PowerKW),
		formatFloat(engine.PowerHP),
		engine.Displacement,
		row.Transmission,
		row.Drivetrain,
		formatInt(int64(row.Doors)),
		formatInt(int64(row.Seats)),
		formatFloat(price.Value),
		price.Currency,
		formatBool(price.IncludesTax),
		formatFloat(row.MSRP),
		row.EffectiveDate,
		row.Country,
		src.FileName,
		formatInt(int64(src.Page)),
		formatInt(int64(src.TableIndex)),
	}
}
