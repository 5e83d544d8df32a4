// Package exporter writes extraction results to their output sinks.
//
// This package contains four main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// TableExporter: Flattens the structured rows of an extraction run into one
// CSV whose columns are the union of all field paths seen.
//
// RowExporter: Writes canonical vehicle rows with a fixed column set, either
// buffered or streaming.
//
// SQLiteExporter: Loads vehicle rows into a SQLite database file for
// downstream querying.
//
// Example usage:
//
//	tables := exporter.NewTableExporter(paths)
//	err := tables.WriteTablesCSV("pricelist_tables.csv", report.Data)
//
//	rows := exporter.NewRowExporter(paths)
//	err = rows.WriteRowsCSV("pricelist_rows.csv", vehicleRows)
//
//	db := exporter.NewSQLiteExporter()
//	err = db.WriteRows(ctx, "pricelist.db", vehicleRows)
package exporter
