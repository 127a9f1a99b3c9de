package tracker

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger sets the logger used by the package. nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
