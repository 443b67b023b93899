// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Wire controls whether verbose wire-level logs are shown
// (every transport message, every scheduled audio chunk).
// Use --debug-wire flag to enable these very verbose logs
var Wire bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Println(msg)
	}
}

// WireLog prints a message only if wire debug mode is enabled
func WireLog(format string, args ...interface{}) {
	if Wire {
		fmt.Printf(format, args...)
	}
}
