package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitRejectsBadInput(t *testing.T) {
	_, err := Init("loud", "json")
	require.Error(t, err)

	_, err = Init("info", "xml")
	require.Error(t, err)
}

func TestInitAndUse(t *testing.T) {
	l, err := Init("debug", "console")
	require.NoError(t, err)
	require.Same(t, l, L())

	core, logs := observer.New(zap.InfoLevel)
	Use(zap.New(core))
	L().Info("shift requested", zap.String("shift_id", "s1"))
	require.Equal(t, 1, logs.FilterMessage("shift requested").Len())
}
