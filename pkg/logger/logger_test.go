package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

func TestLogger_JSONConComponente(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: buf})

	log.Component("sync_engine").Info().Str("scope", "u1").Msg("commit confirmado")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "sync_engine", line["component"])
	assert.Equal(t, "u1", line["scope"])
	assert.Equal(t, "commit confirmado", line["message"])
	assert.Equal(t, "info", line["level"])
}

func TestLogger_NivelFiltra(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Config{Env: "production", Level: "warn", Out: buf})

	log.Info().Msg("no aparece")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("aparece")
	assert.Contains(t, buf.String(), "aparece")
}

func TestLogger_Nop(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Component("x").Error().Msg("descartado") })
}
