package errors

import (
	"testing"
)

func TestValidateRefsetID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "7d3c5a1e-0b1f-4c8e-9a3d-2f6b8e1c4d5a", false},
		{"valid short", "abc123", false},
		{"valid with dot", "set.v2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "foo/bar", true},
		{"path traversal", "..", true},
		{"query", "id?x=1", true},
		{"fragment", "id#x", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRefsetID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRefsetID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRefset) {
				t.Errorf("ValidateRefsetID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidRefset)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://cd-static.example.com/home.json", false},
		{"http", "http://localhost:8080/home.json", false},
		{"empty", "", true},
		{"ftp", "ftp://example.com/file", true},
		{"no scheme", "example.com/home.json", true},
		{"no host", "https:///home.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	if err := ValidateTemplate("https://example.com/sets/{{id}}.json", "{{id}}"); err != nil {
		t.Errorf("valid template rejected: %v", err)
	}
	err := ValidateTemplate("https://example.com/sets/fixed.json", "{{id}}")
	if !Is(err, ErrCodeInvalidConfig) {
		t.Errorf("missing placeholder: got %v, want INVALID_CONFIG", err)
	}
	if err := ValidateTemplate("sets/{{id}}.json", "{{id}}"); err == nil {
		t.Error("relative template should be rejected")
	}
}
