package domain

import (
	"strconv"
	"strings"
)

// EngineInfo describes the powertrain columns of a pricelist row.
type EngineInfo struct {
	Displacement string  `json:"displacement,omitempty"`
	FuelType     string  `json:"fuel_type,omitempty"`
	PowerHP      float64 `json:"power_hp,omitempty"`
	PowerKW      float64 `json:"power_kw,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// PriceInfo describes the price columns of a pricelist row.
type PriceInfo struct {
	Value       float64 `json:"value,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	IncludesTax bool    `json:"includes_tax,omitempty"`
	TaxRate     float64 `json:"tax_rate,omitempty"`
}

// OptionItem is one optional extra listed for a vehicle.
type OptionItem struct {
	Name  string  `json:"name" validate:"required"`
	Code  string  `json:"code,omitempty"`
	Price float64 `json:"price,omitempty"`
}

// SourceInfo records where a row came from.
type SourceInfo struct {
	FileName   string `json:"file_name"`
	Page       int    `json:"page"`
	TableIndex int    `json:"table_index"`
}

// VehicleRow is one vehicle entry in canonical pricelist form. Columns that
// matched no canonical field are preserved in Extra under their verbatim
// header.
type VehicleRow struct {
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Trim     string `json:"trim,omitempty"`
	BodyType string `json:"body_type,omitempty"`

	Engine       *EngineInfo `json:"engine,omitempty"`
	Transmission string      `json:"transmission,omitempty"`
	Drivetrain   string      `json:"drivetrain,omitempty"`
	Doors        int         `json:"doors,omitempty"`
	Seats        int         `json:"seats,omitempty"`

	Price         *PriceInfo `json:"price,omitempty"`
	MSRP          float64    `json:"msrp,omitempty"`
	EffectiveDate string     `json:"effective_date,omitempty"`
	Country       string     `json:"country,omitempty"`

	Options []OptionItem `json:"options,omitempty"`
	Source  *SourceInfo  `json:"source,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// RowFromStructured binds a materialized row onto the canonical vehicle
// schema. Known field paths fill their typed slots with tolerant coercion;
// everything else is kept verbatim in Extra.
func RowFromStructured(row StructuredRow, src *SourceInfo) VehicleRow {
	v := VehicleRow{Source: src}
	for key, val := range row {
		if val == nil {
			continue
		}
		switch key {
		case "make":
			v.Make = asString(val)
		case "model":
			v.Model = asString(val)
		case "variant":
			v.Variant = asString(val)
		case "trim":
			v.Trim = asString(val)
		case "body_type":
			v.BodyType = asString(val)
		case "transmission":
			v.Transmission = asString(val)
		case "drivetrain":
			v.Drivetrain = asString(val)
		case "doors":
			v.Doors = asInt(val)
		case "seats":
			v.Seats = asInt(val)
		case "msrp":
			v.MSRP = asFloat(val)
		case "effective_date":
			v.EffectiveDate = asString(val)
		case "country":
			v.Country = asString(val)
		case "engine":
			if m, ok := val.(map[string]any); ok {
				v.Engine = engineFrom(m)
				continue
			}
			v.extra(key, val)
		case "price":
			if m, ok := val.(map[string]any); ok {
				v.Price = priceFrom(m)
				continue
			}
			v.extra(key, val)
		default:
			v.extra(key, val)
		}
	}
	return v
}

func (v *VehicleRow) extra(key string, val any) {
	if v.Extra == nil {
		v.Extra = make(map[string]any)
	}
	v.Extra[key] = val
}

func engineFrom(m map[string]any) *EngineInfo {
	e := &EngineInfo{}
	for key, val := range m {
		if val == nil {
			continue
		}
		switch key {
		case "displacement":
			e.Displacement = asString(val)
		case "fuel_type":
			e.FuelType = asString(val)
		case "power_hp":
			e.PowerHP = asFloat(val)
		case "power_kw":
			e.PowerKW = asFloat(val)
		case "description":
			e.Description = asString(val)
		}
	}
	return e
}

func priceFrom(m map[string]any) *PriceInfo {
	p := &PriceInfo{}
	for key, val := range m {
		if val == nil {
			continue
		}
		switch key {
		case "value":
			p.Value = asFloat(val)
		case "currency":
			p.Currency = asString(val)
		case "includes_tax":
			p.IncludesTax = asBool(val)
		case "tax_rate":
			p.TaxRate = asFloat(val)
		}
	}
	return p
}

func asString(val any) string {
	switch x := val.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func asFloat(val any) float64 {
	switch x := val.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asInt(val any) int {
	switch x := val.(type) {
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func asBool(val any) bool {
	switch x := val.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false
		}
		return b
	default:
		return false
	}
}
