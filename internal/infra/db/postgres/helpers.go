package postgres

import "strings"

// stringOrDash keeps NOT NULL text columns readable when a run is
// recorded without a value
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
