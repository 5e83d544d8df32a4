package infrastructure

import (
	"github.com/google/uuid"
)

// GenerateTraceID returns a fresh extraction run identifier. The service
// mints one per run and carries it in the context (WithTraceID) so log
// lines from concurrent runs stay attributable, and reports it back to
// the caller as the run ID.
func GenerateTraceID() string {
	return uuid.New().String()
}
