package logging

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})
}

// SetLevel applies a logrus level name. An empty name means info.
func SetLevel(level string) error {
	if level == "" {
		level = logrus.InfoLevel.String()
	}
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}
	logrus.SetLevel(l)
	return nil
}
