package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, 0)
	logger.Debug("hidden")
	logger.Info("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=value")

	buf.Reset()
	New(&buf, 2).Debug("details")
	assert.Contains(t, buf.String(), "details")
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}
