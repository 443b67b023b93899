// Package config provides configuration helpers for fridge-critic
// commands.
package config

import (
	"fmt"
	"os"
)

// Defaults for the monitor server.
const (
	DefaultWebPort = "8080"
)

// GoogleAPIKey returns the Gemini API key from GOOGLE_API_KEY, falling
// back to GEMINI_API_KEY. Exits with usage when neither is set.
func GoogleAPIKey() string {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	fmt.Fprintln(os.Stderr, "Error: GOOGLE_API_KEY environment variable is required")
	fmt.Fprintln(os.Stderr, "Usage: GOOGLE_API_KEY=... go run ./cmd/critic")
	os.Exit(1)
	return ""
}

// WebPort returns the monitor port from WEB_PORT env var or default.
func WebPort() string {
	if port := os.Getenv("WEB_PORT"); port != "" {
		return port
	}
	return DefaultWebPort
}

// Model returns the Gemini model override from GEMINI_MODEL, or empty
// for the built-in default.
func Model() string {
	return os.Getenv("GEMINI_MODEL")
}
