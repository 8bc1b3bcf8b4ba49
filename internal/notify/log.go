package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Log writes digests to the process log. Used when no chat is configured.
type Log struct {
	logger *log.Logger
}

func NewLog(logger *log.Logger) *Log {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, text string) error {
	l.logger.WithField("notifier", "log").Info(text)
	return nil
}
