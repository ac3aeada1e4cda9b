package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var tenantPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,63}$`)

// ValidateTenant checks tenant identifiers used in URLs and DB keys
func ValidateTenant(tenant string) error {
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant: %q", tenant)
	}
	return nil
}

// ValidateInputFile checks a user-supplied input filename. Only bare
// CSV filenames are accepted; the server resolves them against its
// configured input directory.
func ValidateInputFile(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("input_file cannot be empty")
	}
	if name != filepath.Base(name) || strings.Contains(name, "..") {
		return fmt.Errorf("input_file must be a bare filename, got %q", name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return fmt.Errorf("input_file must be a .csv file, got %q", name)
	}
	return nil
}
