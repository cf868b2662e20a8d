package logger

import (
	"fmt"

	"github.com/golang/glog"
)

// GlogLogger implements the Logger interface for logging using the glog library with configurable call depth.
type GlogLogger struct {
	depth int
}

func (logger *GlogLogger) Debugf(msg string, args ...any) {
	if glog.V(1) {
		glog.InfoDepth(logger.depth, fmt.Sprintf(msg, args...))
	}
}

func (logger *GlogLogger) Infof(msg string, args ...any) {
	glog.InfoDepth(logger.depth, fmt.Sprintf(msg, args...))
}

func (logger *GlogLogger) Warnf(msg string, args ...any) {
	glog.WarningDepth(logger.depth, fmt.Sprintf(msg, args...))
}

func (logger *GlogLogger) Errorf(msg string, args ...any) {
	glog.ErrorDepth(logger.depth, fmt.Sprintf(msg, args...))
}

func (logger *GlogLogger) Fatalf(msg string, args ...any) {
	glog.FatalDepth(logger.depth, fmt.Sprintf(msg, args...))
}

// NewGlogLogger returns a Logger which reports the caller of the logging method as the log source.
func NewGlogLogger() Logger {
	return &GlogLogger{
		depth: 1,
	}
}
