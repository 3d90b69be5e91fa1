package util

import (
	"os"
	"testing"
)

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"TRUE", false, true},
		{" true ", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"invalid", true, true},
		{"invalid", false, false},
	}

	const key = "LEADFUNNEL_TEST_BOOL"
	for _, tt := range tests {
		os.Setenv(key, tt.value)
		if got := ParseBoolEnv(key, tt.defaultValue); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
		}
	}
	os.Unsetenv(key)

	if !ParseBoolEnv(key, true) {
		t.Error("Expected default true for unset variable")
	}
	if ParseBoolEnv(key, false) {
		t.Error("Expected default false for unset variable")
	}
}
