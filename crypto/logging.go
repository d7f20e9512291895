package crypto

import (
	"errors"
	"fmt"

	"github.com/opd-ai/cngcrypt/status"
	"github.com/sirupsen/logrus"
)

// LoggerHelper provides standardized logging for the provider packages.
// Every entry carries the package and function that emitted it.
type LoggerHelper struct {
	function string
	pkg      string
	fields   logrus.Fields
}

// NewLogger creates a logger helper for a function of this package.
func NewLogger(function string) *LoggerHelper {
	return NewPackageLogger("crypto", function)
}

// NewPackageLogger creates a logger helper for a function in any of the
// provider packages.
func NewPackageLogger(pkg, function string) *LoggerHelper {
	return &LoggerHelper{
		function: function,
		pkg:      pkg,
		fields: logrus.Fields{
			"function": function,
			"package":  pkg,
		},
	}
}

// WithField adds a custom field to the logger
func (l *LoggerHelper) WithField(key string, value interface{}) *LoggerHelper {
	l.fields[key] = value
	return l
}

// WithFields adds multiple custom fields to the logger
func (l *LoggerHelper) WithFields(fields logrus.Fields) *LoggerHelper {
	for k, v := range fields {
		l.fields[k] = v
	}
	return l
}

// WithAlgorithm tags the entry with the algorithm a handle belongs to.
func (l *LoggerHelper) WithAlgorithm(name string) *LoggerHelper {
	l.fields["algorithm"] = name
	return l
}

// WithError adds error information to the logger. The status code is
// recorded separately so log queries can group by it.
func (l *LoggerHelper) WithError(err error, operation string) *LoggerHelper {
	l.fields["error"] = err.Error()
	l.fields["operation"] = operation
	var code status.Status
	if errors.As(err, &code) {
		l.fields["status"] = code.String()
	}
	return l
}

// Debug logs a debug message
func (l *LoggerHelper) Debug(message string) {
	logrus.WithFields(l.fields).Debug(message)
}

// Info logs an info message
func (l *LoggerHelper) Info(message string) {
	logrus.WithFields(l.fields).Info(message)
}

// Warn logs a warning message
func (l *LoggerHelper) Warn(message string) {
	logrus.WithFields(l.fields).Warn(message)
}

// Error logs an error message
func (l *LoggerHelper) Error(message string) {
	logrus.WithFields(l.fields).Error(message)
}

// SecureFieldHash creates a size and prefix preview of data for logging.
// Only call it on public values such as ciphertext, digests or public keys.
func SecureFieldHash(data []byte, name string) logrus.Fields {
	preview := "nil"
	if len(data) > 0 {
		previewLen := 8
		if len(data) < previewLen {
			previewLen = len(data)
		}
		preview = fmt.Sprintf("%x", data[:previewLen])
		if len(data) > previewLen {
			preview += "..."
		}
	}

	return logrus.Fields{
		name + "_preview": preview,
		name + "_size":    len(data),
	}
}

// SizeFields records only the length of a buffer, for secrets.
func SizeFields(name string, data []byte) logrus.Fields {
	return logrus.Fields{name + "_size": len(data)}
}
