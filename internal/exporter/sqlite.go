package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	apperrors "plxcli/internal/errors"
	"plxcli/pkg/contracts/domain"
)

// SQLiteExporter persists vehicle rows into a SQLite database file.
type SQLiteExporter struct{}

// NewSQLiteExporter creates a new SQLite exporter
func NewSQLiteExporter() *SQLiteExporter {
	return &SQLiteExporter{}
}

const vehicleRowsSchema = `
CREATE TABLE IF NOT EXISTS vehicle_rows (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_file TEXT NOT NULL,
	page INTEGER NOT NULL,
	table_index INTEGER NOT NULL,
	make TEXT,
	model TEXT,
	variant TEXT,
	trim_level TEXT,
	body_type TEXT,
	engine_description TEXT,
	fuel_type TEXT,
	power_kw REAL,
	power_hp REAL,
	displacement TEXT,
	transmission TEXT,
	drivetrain TEXT,
	doors INTEGER,
	seats INTEGER,
	price REAL,
	currency TEXT,
	includes_tax INTEGER,
	msrp REAL,
	effective_date TEXT,
	country TEXT
)`

const insertVehicleRow = `
INSERT INTO vehicle_rows (
	source_file, page, table_index,
	make, model, variant, trim_level, body_type,
	engine_description, fuel_type, power_kw, power_hp, displacement,
	transmission, drivetrain, doors, seats,
	price, currency, includes_tax, msrp, effective_date, country
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// WriteRows inserts all rows into dbPath in a single transaction, creating
// the vehicle_rows table if it does not exist. A failed insert rolls the
// whole batch back.
func (s *SQLiteExporter) WriteRows(ctx context.Context, dbPath string, rows []domain.VehicleRow) error {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewExportError("create output directory", err).WithContext("path", dbPath)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return apperrors.NewExportError("open sqlite database", err).WithContext("path", dbPath)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, vehicleRowsSchema); err != nil {
		return apperrors.NewExportError("create vehicle_rows table", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewExportError("begin transaction", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertVehicleRow)
	if err != nil {
		tx.Rollback()
		return apperrors.NewExportError("prepare insert", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, vehicleRowArgs(row)...); err != nil {
			tx.Rollback()
			return apperrors.NewExportError(fmt.Sprintf("insert row %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewExportError("commit transaction", err)
	}
	return nil
}

func vehicleRowArgs(row domain.VehicleRow) []any {
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
	return []any{
		src.FileName, src.Page, src.TableIndex,
		row.Make, row.Model, row.Variant, row.Trim, row.BodyType,
		engine.Description, engine.FuelType, engine.PowerKW, engine.PowerHP, engine.Displacement,
		row.Transmission, row.Drivetrain, row.Doors, row.Seats,
		price.Value, price.Currency, price.IncludesTax, row.MSRP, row.EffectiveDate, row.Country,
	}
}
