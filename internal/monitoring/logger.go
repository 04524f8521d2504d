// Package monitoring holds the process-wide diagnostic logger shared by the
// schema loader and the tracker.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Debug gates Debugf. Off by default; flipped by the -debug CLI flag.
var Debug bool

// Debugf logs through Logf when Debug is set.
func Debugf(format string, v ...interface{}) {
	if Debug {
		Logf(format, v...)
	}
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
