// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Pipeline controls whether verbose per-frame pipeline logs are shown
// (detection hits/misses, ROI lock transitions, smoothing state).
// Use --debug-pipeline to enable these very verbose logs.
var Pipeline bool

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

// PipeLog prints a message only if pipeline debug mode is enabled
func PipeLog(format string, args ...interface{}) {
	if Pipeline {
		fmt.Printf(format, args...)
	}
}

// PipeLogln prints a message with newline only if pipeline debug mode is enabled
func PipeLogln(msg string) {
	if Pipeline {
		fmt.Println(msg)
	}
}
