package logflags

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_withoutLog(t *testing.T) {
	require.NoError(t, Setup(false, ""))
	assert.False(t, Loader())
	assert.False(t, Walker())
	assert.False(t, Symtab())

	assert.Equal(t, errLogstrWithoutLog, Setup(false, "walker"))
}

func TestSetup_layers(t *testing.T) {
	defer Setup(false, "")

	require.NoError(t, Setup(true, "walker"))
	assert.False(t, Loader())
	assert.True(t, Walker())
	assert.False(t, Symtab())

	require.NoError(t, Setup(true, ""))
	assert.True(t, Loader())
	assert.True(t, Walker())
	assert.True(t, Symtab())
}

func TestMakeLogger_levels(t *testing.T) {
	off := makeLogger(false, logrus.Fields{"foo": "bar"})
	assert.Equal(t, logrus.WarnLevel, off.Logger.Level)
	assert.Equal(t, "bar", off.Data["foo"])

	on := makeLogger(true, logrus.Fields{"foo": "bar"})
	assert.Equal(t, logrus.DebugLevel, on.Logger.Level)
	assert.Same(t, textFormatterInstance, on.Logger.Formatter)
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	WalkerLogger().Debug("hidden")
	WalkerLogger().Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "layer=walker")
}
