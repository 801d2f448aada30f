package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug").Level)
	assert.Equal(t, logrus.WarnLevel, New(" warn ").Level)
	assert.Equal(t, logrus.InfoLevel, New("loud").Level)
	assert.Equal(t, logrus.InfoLevel, New("").Level)
}

func TestNewWithOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", &buf)
	log.WithField("rows", 3).Info("loaded")
	log.Debug("hidden")
	out := buf.String()
	assert.Contains(t, out, "msg=loaded")
	assert.Contains(t, out, "rows=3")
	assert.NotContains(t, out, "hidden")
}
