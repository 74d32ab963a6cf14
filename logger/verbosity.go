package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
const (
	VerbosityDefault = 0 // No flags: progress and errors
	VerbosityDebug   = 1 // -v: + request URLs, config details
	VerbosityQuiet   = -1
)

// VerbosityToLevel maps the -v flag count (or --quiet) to a zap level.
//
// Mapping:
//
//	-1 (--quiet) -> WarnLevel
//	0 (none)     -> InfoLevel
//	1+ (-v)      -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityDefault:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
