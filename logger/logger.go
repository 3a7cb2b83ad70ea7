package logger

import (
	"os"

	"github.com/ioann7/api-yatube/config"

	"github.com/sirupsen/logrus"
)

func Init() {
	logrus.SetOutput(os.Stdout)
	if config.LOG_JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(config.LOG_LEVEL)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", config.LOG_LEVEL)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
