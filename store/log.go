package store

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger sets the logger used by the package.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
