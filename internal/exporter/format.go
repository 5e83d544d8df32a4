package exporter

import "strconv"

// formatFloat formats a float64 for CSV output using the shortest
// representation that round-trips, so 90.0 stays "90" and 28950.5 stays
// "28950.5".
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
