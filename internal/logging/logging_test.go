// Public domain.

package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gem-daq/vfat3ana/internal/logging"
)

func TestVerbosity(t *testing.T) {
	l, err := logging.New(logging.DEBUG, false)
	require.NoError(t, err)
	assert.True(t, l.V(logging.DEBUG).Enabled())
	assert.False(t, l.V(logging.TRACE).Enabled())

	l, err = logging.New(logging.DEFAULT, false)
	require.NoError(t, err)
	assert.True(t, l.Enabled())
	assert.False(t, l.V(logging.VERBOSE).Enabled())
}

func TestNewTestLogger(t *testing.T) {
	l := logging.NewTestLogger()
	assert.True(t, l.V(logging.TRACE).Enabled())
	l.V(logging.TRACE).Info("trace message", "chip", 3, "channel", 17)
}
