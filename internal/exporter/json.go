package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "plxcli/internal/errors"
)

// WriteJSON writes v as indented JSON, creating parent directories as
// needed.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewExportError("encode json", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewExportError("create output directory", err).WithContext("path", path)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewExportError("write json file", err).WithContext("path", path)
	}
	return nil
}
