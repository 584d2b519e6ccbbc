package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Config interface {
	CapacityPath() string
	ACOnlinePath() string
	PollInterval() time.Duration
	ShutdownDelay() time.Duration
	ShutdownCommand() []string
	Notifier() string

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
}
