package cngcrypt

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogging(t *testing.T) {
	var buf bytes.Buffer
	opts := NewOptions()
	opts.LogLevel = logrus.DebugLevel
	opts.JSONLogs = true
	opts.Output = &buf
	require.NoError(t, Configure(opts))
	t.Cleanup(func() { _ = Configure(nil) })

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.Contains(t, buf.String(), `"function":"Configure"`)

	buf.Reset()
	_, err := mustOpen(t, "AES", 0).GenerateSymmetricKey(make([]byte, 16))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"package":"symmetric"`)
	assert.NotContains(t, buf.String(), "00000000000000000000000000000000")
}

func TestNewOptions(t *testing.T) {
	opts := NewOptions()
	assert.Equal(t, logrus.WarnLevel, opts.LogLevel)
	assert.Equal(t, 2048, opts.DefaultRSABits)
	assert.False(t, opts.JSONLogs)
}
