package utils

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Logger
}

func NewLogger(level string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = logrus.InfoLevel
	}

	logger.SetLevel(logLevel)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger}
}

func (l *Logger) LogCertificateEvent(event string, alias string, requestID string, details map[string]interface{}) {
	fields := logrus.Fields{
		"event":      event,
		"alias":      alias,
		"request_id": requestID,
		"type":       "certificate_audit",
	}

	for k, v := range details {
		fields[k] = v
	}

	l.WithFields(fields).Info("Certificate lifecycle event")
}

func (l *Logger) LogSecurityEvent(event string, userID string, ip string, details map[string]interface{}) {
	fields := logrus.Fields{
		"event":   event,
		"user_id": userID,
		"ip":      ip,
		"type":    "security_audit",
	}

	for k, v := range details {
		fields[k] = v
	}

	l.WithFields(fields).Warn("Security event")
}

func (l *Logger) LogAPIAccess(method, path, ip string, statusCode int, duration time.Duration, userID string) {
	l.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"ip":          ip,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
		"user_id":     userID,
		"type":        "api_access",
	}).Info("API access")
}

func (l *Logger) LogError(err error, context string, fields map[string]interface{}) {
	logFields := logrus.Fields{
		"context": context,
	}

	for k, v := range fields {
		logFields[k] = v
	}

	l.WithFields(logFields).Error(err.Error())
}
