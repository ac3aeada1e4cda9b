package middleware

import "testing"

func TestValidateInputFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"plain csv", "audit_export.csv", false},
		{"uppercase extension", "EXPORT.CSV", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"wrong extension", "export.xlsx", true},
		{"path traversal", "../secrets.csv", true},
		{"absolute path", "/etc/passwd.csv", true},
		{"nested path", "sub/export.csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.file)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputFile(%q) error = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTenant(t *testing.T) {
	tests := []struct {
		tenant  string
		wantErr bool
	}{
		{"acme", false},
		{"acme-prod_1", false},
		{"", true},
		{"-leading-dash", true},
		{"has space", true},
		{"slash/bad", true},
	}

	for _, tt := range tests {
		err := ValidateTenant(tt.tenant)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTenant(%q) error = %v, wantErr %v", tt.tenant, err, tt.wantErr)
		}
	}
}
