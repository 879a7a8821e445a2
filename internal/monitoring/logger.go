// Package monitoring holds the diagnostic logger shared by the agent layer
// and the harness. Pure estimation and guidance code does not log.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// is replaced through SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Tagged returns a logger that prefixes every line with tag. It resolves
// Logf on each call, so a later SetLogger still applies.
func Tagged(tag string) func(format string, v ...interface{}) {
	return func(format string, v ...interface{}) {
		Logf(tag+": "+format, v...)
	}
}
