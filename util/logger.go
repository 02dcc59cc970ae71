package util

import (
	"github.com/sirupsen/logrus"
)

var Logger = NewLogger()

//NewLogger shared logger, JSON output with caller info
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetReportCaller(true)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
	})
	return logger
}
