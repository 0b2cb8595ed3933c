package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "release")

	l.Debug("hidden")
	l.Info("document indexed", "namespace", "podcast_x", "records", 4)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "document indexed", entry["msg"])
	assert.Equal(t, "podcast_x", entry["namespace"])
	assert.Equal(t, "podcast-prep", entry["service"])
	assert.EqualValues(t, 4, entry["records"])
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	assert.NotPanics(t, func() {
		Info("x")
		Warn("x")
		Error("x")
		Debug("x")
	})
	assert.Nil(t, With("k", "v"))
}
