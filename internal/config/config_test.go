package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	got := FromEnv()
	assert.Equal(t, Default(), got)
}

func TestFromEnvOverridesIndividualFields(t *testing.T) {
	clearEnv(t)
	t.Setenv("CODERLM_LISTEN_ADDR", ":9100")
	t.Setenv("CODERLM_MAX_PROJECTS", "32")
	t.Setenv("CODERLM_PDF_CONVERTER", "custom-converter")
	t.Setenv("CODERLM_PDF_TIMEOUT", "5s")
	t.Setenv("CODERLM_GREP_TIMEOUT", "1m")

	got := FromEnv()
	assert.Equal(t, ":9100", got.ListenAddr)
	assert.Equal(t, 32, got.MaxProjects)
	assert.Equal(t, "custom-converter", got.PDFConverter)
	assert.Equal(t, 5*time.Second, got.PDFTimeout)
	assert.Equal(t, time.Minute, got.GrepTimeout)
}

func TestFromEnvIgnoresUnparseableValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CODERLM_MAX_PROJECTS", "not-a-number")
	t.Setenv("CODERLM_PDF_TIMEOUT", "not-a-duration")

	got := FromEnv()
	assert.Equal(t, Default().MaxProjects, got.MaxProjects)
	assert.Equal(t, Default().PDFTimeout, got.PDFTimeout)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CODERLM_LISTEN_ADDR", "CODERLM_MAX_PROJECTS",
		"CODERLM_PDF_CONVERTER", "CODERLM_PDF_TIMEOUT", "CODERLM_GREP_TIMEOUT",
	} {
		_ = os.Unsetenv(k)
	}
}
