// Package extraction turns table markup emitted by the spreadsheet renderer
// or an upstream layout model into schema-mapped structured rows. Parsing,
// header resolution, and row materialization are pure functions; the service
// layer adds file handling and concurrency around them.
package extraction

import (
	"math"
	"strconv"
	"strings"

	"plxcli/pkg/contracts/domain"
)

// Integers beyond 2^53 are not exactly representable in float64, so the
// "no fractional part" test is meaningless past this bound.
const maxExactInt = int64(1) << 53

// MaterializeRows applies a resolved field map to parsed rows, in column
// order, producing one structured record per row. Row order is preserved
// and materialization never fails: unrecognized values pass through as
// strings.
func MaterializeRows(rows [][]string, fields domain.ResolvedFieldMap) []domain.StructuredRow {
	out := make([]domain.StructuredRow, 0, len(rows))
	for _, row := range rows {
		record := domain.StructuredRow{}
		for i, binding := range fields {
			var raw string
			if i < len(row) {
				raw = row[i]
			}
			setNested(record, binding.Path, normalizeValue(raw))
		}
		out = append(out, record)
	}
	return out
}

// normalizeValue coerces one raw cell value to its natural type: the empty
// string is the null marker, numerics parse with thousands separators
// stripped, and a float with no fractional part collapses to an integer.
// Everything else stays a string.
func normalizeValue(raw string) any {
	if raw == "" {
		return nil
	}

	numeric := strings.ReplaceAll(raw, ",", "")
	if n, err := strconv.ParseInt(numeric, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(numeric, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return raw
		}
		if f == math.Trunc(f) && f >= -float64(maxExactInt) && f <= float64(maxExactInt) {
			return int64(f)
		}
		return f
	}

	return raw
}

// setNested assigns a value at a dotted field path, creating intermediate
// maps as needed. A leaf already sitting where a map is needed is replaced:
// last write wins.
func setNested(record domain.StructuredRow, path string, value any) {
	parts := strings.Split(path, ".")
	node := map[string]any(record)
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
}
