package utils

import "go.uber.org/zap"

// NewLogger builds the process logger. Debug mode yields zap's development
// setup with console output down to debug level; otherwise the production
// JSON logger at info level is used.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
