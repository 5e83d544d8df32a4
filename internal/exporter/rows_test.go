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

func sampleVehicleRows() []domain.VehicleRow {
	return []domain.VehicleRow{
		{
			Model:        "Corolla",
			Engine:       &domain.EngineInfo{Description: "1.8L Hybrid", PowerKW: 90, PowerHP: 122},
			Transmission: "CVT",
			Drivetrain:   "FWD",
			Doors:        4,
			Price:        &domain.PriceInfo{Value: 28950, Currency: "EUR"},
			Source:       &domain.SourceInfo{FileName: "toyota.xlsx", Page: 0, TableIndex: 0},
		},
		{
			Model: "Yaris",
			// Engine, Price and Source left nil on purpose.
		},
	}
}

func TestRowToCSVRow(t *testing.T) {
	rows := sampleVehicleRows()

	first := rowToCSVRow(rows[0])
	require.Len(t, first, len(vehicleRowHeaders()))
	assert.Equal(t, "Corolla", first[1])
	assert.Equal(t, "1.8L Hybrid", first[5])
	assert.Equal(t, "90", first[7])
	assert.Equal(t, "122", first[8])
	assert.Equal(t, "CVT", first[10])
	assert.Equal(t, "4", first[12])
	assert.Equal(t, "28950", first[14])
	assert.Equal(t, "EUR", first[15])
	assert.Equal(t, "toyota.xlsx", first[20])

	// Nil sub-structs render as zero values instead of panicking.
	second := rowToCSVRow(rows[1])
	require.Len(t, second, len(vehicleRowHeaders()))
	assert.Equal(t, "Yaris", second[1])
	assert.Equal(t, "0", second[7])
	assert.Equal(t, "", second[15])
}

func TestWriteRowsCSV(t *testing.T) {
	tempDir := t.TempDir()
	exp := NewRowExporter(&config.Paths{OutputDir: tempDir})

	require.NoError(t, exp.WriteRowsCSV("rows.csv", sampleVehicleRows()))

	content, err := os.ReadFile(filepath.Join(tempDir, "rows.csv"))
	require.NoError(t, err)

	text := strings.TrimPrefix(string(content), "\xef\xbb\xbf")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(vehicleRowHeaders(), ","), lines[0])
	assert.Contains(t, lines[1], "Corolla")
	assert.Contains(t, lines[2], "Yaris")
}

func TestStreamRows_MatchesBuffered(t *testing.T) {
	tempDir := t.TempDir()
	exp := NewRowExporter(&config.Paths{OutputDir: tempDir})
	rows := sampleVehicleRows()

	require.NoError(t, exp.WriteRowsCSV("buffered.csv", rows))

	// Appending in per-file chunks must match writing everything at once.
	stream, err := exp.StreamRows("streamed.csv")
	require.NoError(t, err)
	require.NoError(t, stream.Append(rows[:1]))
	require.NoError(t, stream.Append(rows[1:]))
	require.NoError(t, stream.Close())

	buffered, err := os.ReadFile(filepath.Join(tempDir, "buffered.csv"))
	require.NoError(t, err)
	streamed, err := os.ReadFile(filepath.Join(tempDir, "streamed.csv"))
	require.NoError(t, err)
	assert.Equal(t, buffered, streamed)
}
