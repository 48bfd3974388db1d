package tui

import "testing"

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "***"},
		{"short", "***"},
		{"sk-abcdefghijklmnop", "sk-abcd...mnop"},
	}
	for _, tt := range tests {
		if got := maskAPIKey(tt.key); got != tt.want {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValidatePositiveInt(t *testing.T) {
	for _, valid := range []string{"1", "15", "300"} {
		if err := validatePositiveInt(valid); err != nil {
			t.Errorf("validatePositiveInt(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "0", "-3", "abc", "1.5"} {
		if err := validatePositiveInt(invalid); err == nil {
			t.Errorf("validatePositiveInt(%q) = nil, want error", invalid)
		}
	}
}
