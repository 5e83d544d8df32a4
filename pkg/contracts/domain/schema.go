package domain

import (
	"github.com/invopop/jsonschema"
)

// VehicleRowSchema reflects the JSON Schema for VehicleRow. Additional
// properties are disallowed and definitions are inlined so the document
// stands alone for downstream validators.
func VehicleRowSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&VehicleRow{})
}

// PageResultSchema reflects the JSON Schema for PageResult, the per-page
// envelope emitted by the extraction service.
func PageResultSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&PageResult{})
}
