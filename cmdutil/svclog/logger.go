// Package svclog provides logging facilities for standard services.
package svclog

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Config for logger.
type Config struct {
	AppName  string `env:"APP_NAME,default=grokstats"`
	Deploy   string `env:"DEPLOY,default=local"`
	Dyno     string `env:"DYNO"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// NewLogger returns a new logger that includes app and deploy key/value pairs
// in each log line.
func NewLogger(cfg Config) logrus.FieldLogger {
	return newLogger(logrus.StandardLogger(), cfg)
}

func newLogger(base *logrus.Logger, cfg Config) logrus.FieldLogger {
	logger := base.WithFields(logrus.Fields{
		"app":    cfg.AppName,
		"deploy": cfg.Deploy,
	})
	if cfg.Dyno != "" {
		logger = logger.WithField("dyno", cfg.Dyno)
	}

	if l, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		base.SetLevel(l)
	}
	return logger
}

type leveledLogger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// SampleLogger drops log lines beyond a configured rate. All levels share
// one limiter.
type SampleLogger struct {
	logger  leveledLogger
	limiter *rate.Limiter
}

// NewSampleLogger returns a SampleLogger allowing logsBurstLimit lines at
// once and one more per logBurstWindow after that.
func NewSampleLogger(logger leveledLogger, logsBurstLimit int, logBurstWindow time.Duration) *SampleLogger {
	return &SampleLogger{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(logBurstWindow), logsBurstLimit),
	}
}

// Printf logs at info level when the rate allows.
func (l *SampleLogger) Printf(format string, args ...interface{}) {
	if l.limiter.Allow() {
		l.logger.Printf(format, args...)
	}
}

// Debugf logs at debug level when the rate allows.
func (l *SampleLogger) Debugf(format string, args ...interface{}) {
	if l.limiter.Allow() {
		l.logger.Debugf(format, args...)
	}
}
