package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func Test_Named(t *testing.T) {
	t.Parallel()

	lggr := Test(t)
	require.Empty(t, lggr.Name())

	child := lggr.Named("registry")
	assert.Equal(t, "registry", child.Name())
	assert.Equal(t, "registry.http", child.Named("http").Name())
}

func Test_TestObserved(t *testing.T) {
	t.Parallel()

	lggr, logs := TestObserved(t, zapcore.WarnLevel)
	lggr.Infow("dropped below level")
	lggr.Warnw("mint verification failed", "txHash", "0xabc")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "mint verification failed", entries[0].Message)
}

func Test_Nop(t *testing.T) {
	t.Parallel()

	lggr := Nop()
	lggr.Errorw("discarded")
	require.NoError(t, lggr.Sync())
}
