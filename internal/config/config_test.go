package config

import (
	"testing"
)

func TestWebPortDefault(t *testing.T) {
	t.Setenv("WEB_PORT", "")
	if got := WebPort(); got != DefaultWebPort {
		t.Errorf("expected default %s, got %s", DefaultWebPort, got)
	}
}

func TestWebPortOverride(t *testing.T) {
	t.Setenv("WEB_PORT", "9000")
	if got := WebPort(); got != "9000" {
		t.Errorf("expected 9000, got %s", got)
	}
}

func TestModel(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "models/gemini-test")
	if got := Model(); got != "models/gemini-test" {
		t.Errorf("unexpected model: %s", got)
	}
}
