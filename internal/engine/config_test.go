package engine

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageAttempts(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		c := Config{PrimaryLanguages: []string{"en"}, FallbackLanguages: []string{"en", "de"}}
		assert.Equal(t, [][]string{{"en"}, {"en", "de"}}, c.LanguageAttempts())
	})

	t.Run("empty primary skipped", func(t *testing.T) {
		c := Config{FallbackLanguages: []string{"fr"}}
		assert.Equal(t, [][]string{{"fr"}}, c.LanguageAttempts())
	})

	t.Run("defaults", func(t *testing.T) {
		var c Config
		got := c.LanguageAttempts()
		assert.Len(t, got, 2)
		assert.Equal(t, DefaultPrimaryLanguages, got[0])
		assert.Equal(t, DefaultFallbackLanguages, got[1])
	})
}

func TestConfigClient(t *testing.T) {
	var nilCfg *Config
	assert.Same(t, http.DefaultClient, nilCfg.Client())

	hc := &http.Client{}
	c := &Config{HTTPClient: hc}
	assert.Same(t, hc, c.Client())
}
