package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFromStructured(t *testing.T) {
	tests := []struct {
		name string
		row  StructuredRow
		src  *SourceInfo
		want VehicleRow
	}{
		{
			name: "typed slots with nested price and engine",
			row: StructuredRow{
				"model":        "Corolla",
				"transmission": "CVT",
				"doors":        int64(4),
				"price": map[string]any{
					"value":    int64(28950),
					"currency": "EUR",
				},
				"engine": map[string]any{
					"description": "1.8L Hybrid",
					"power_hp":    float64(140),
				},
			},
			want: VehicleRow{
				Model:        "Corolla",
				Transmission: "CVT",
				Doors:        4,
				Price:        &PriceInfo{Value: 28950, Currency: "EUR"},
				Engine:       &EngineInfo{Description: "1.8L Hybrid", PowerHP: 140},
			},
		},
		{
			name: "unmapped columns land in extra verbatim",
			row: StructuredRow{
				"model":       "RAV4",
				"Warranty":    "5 years",
				"Dealer Code": int64(77),
			},
			want: VehicleRow{
				Model: "RAV4",
				Extra: map[string]any{
					"Warranty":    "5 years",
					"Dealer Code": int64(77),
				},
			},
		},
		{
			name: "null values are skipped",
			row: StructuredRow{
				"model": "Land Cruiser",
				"seats": nil,
				"price": map[string]any{"value": nil, "currency": "EUR"},
			},
			want: VehicleRow{
				Model: "Land Cruiser",
				Price: &PriceInfo{Currency: "EUR"},
			},
		},
		{
			name: "numeric coercion from strings",
			row: StructuredRow{
				"doors": "4",
				"seats": float64(7),
				"msrp":  "31990.5",
			},
			want: VehicleRow{Doors: 4, Seats: 7, MSRP: 31990.5},
		},
		{
			name: "scalar under a nested slot falls back to extra",
			row: StructuredRow{
				"price": "28950 EUR",
			},
			want: VehicleRow{Extra: map[string]any{"price": "28950 EUR"}},
		},
		{
			name: "source reference is attached",
			row:  StructuredRow{"model": "Corolla"},
			src:  &SourceInfo{FileName: "toyota.xlsx", Page: 0, TableIndex: 1},
			want: VehicleRow{
				Model:  "Corolla",
				Source: &SourceInfo{FileName: "toyota.xlsx", Page: 0, TableIndex: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RowFromStructured(tt.row, tt.src)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVehicleRowJSONShape(t *testing.T) {
	row := RowFromStructured(StructuredRow{
		"model": "Corolla",
		"price": map[string]any{"value": int64(28950), "currency": "EUR"},
	}, &SourceInfo{FileName: "toyota.xlsx"})

	data, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "Corolla", decoded["model"])
	price, ok := decoded["price"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(28950), price["value"])
	assert.Equal(t, "EUR", price["currency"])

	// Zero-valued slots stay out of the document.
	assert.NotContains(t, decoded, "doors")
	assert.NotContains(t, decoded, "extra")
	assert.NotContains(t, decoded, "options")
}

func TestVehicleRowSchema(t *testing.T) {
	schema := VehicleRowSchema()
	require.NotNil(t, schema)

	data, err := json.Marshal(schema)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "object", doc["type"])
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema should inline properties")
	assert.Contains(t, props, "model")
	assert.Contains(t, props, "price")
	assert.Contains(t, props, "engine")
	assert.Equal(t, false, doc["additionalProperties"])
}
