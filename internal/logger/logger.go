package logger

import (
	"go.uber.org/zap"
)

func New(verbosity string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	return config.Build()
}

// NewNamed builds a logger at the given verbosity with a named root,
// so component loggers hang off a common prefix.
func NewNamed(verbosity, name string) (*zap.Logger, error) {
	log, err := New(verbosity)
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
