package cngcrypt

import (
	"io"
	"os"
	"sync"

	"github.com/opd-ai/cngcrypt/asymmetric"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/sirupsen/logrus"
)

// Options contains process-wide provider settings.
type Options struct {
	LogLevel logrus.Level
	// JSONLogs switches the log formatter from text to JSON.
	JSONLogs bool
	Output   io.Writer
	// DefaultRSABits is the key size GenerateKeyPair uses for RSA when
	// it is asked for zero bits.
	DefaultRSABits int
}

// NewOptions creates a new default Options.
func NewOptions() *Options {
	return &Options{
		LogLevel:       logrus.WarnLevel,
		Output:         os.Stderr,
		DefaultRSABits: 2048,
	}
}

var (
	configMu       sync.RWMutex
	defaultRSABits = 2048
)

// Configure applies options to the logger and the provider defaults. A nil
// options restores the defaults.
func Configure(options *Options) error {
	if options == nil {
		options = NewOptions()
	}
	rsaAlg, err := asymmetric.Lookup(asymmetric.RSA)
	if err != nil {
		return err
	}
	if err := limits.ValidateKeyBits(options.DefaultRSABits, rsaAlg.KeyBits); err != nil {
		return status.Errorf(status.InvalidParameter, "default RSA key size: %v", err)
	}

	logrus.SetLevel(options.LogLevel)
	if options.JSONLogs {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}
	if options.Output != nil {
		logrus.SetOutput(options.Output)
	}

	configMu.Lock()
	defaultRSABits = options.DefaultRSABits
	configMu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":         "Configure",
		"level":            options.LogLevel.String(),
		"json":             options.JSONLogs,
		"default_rsa_bits": options.DefaultRSABits,
	}).Debug("provider configured")
	return nil
}

func rsaDefaultBits() int {
	configMu.RLock()
	defer configMu.RUnlock()
	return defaultRSABits
}
