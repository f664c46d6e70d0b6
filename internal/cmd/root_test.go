package cmd

import (
	"io"
	"testing"

	"github.com/quantmind-br/postinstall/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{}

	cmd := NewRootCmd(cfg, &logger, "1.0.0")

	assert.NotNil(t, cmd)
	assert.Equal(t, "postinstall", cmd.Use)

	for _, name := range []string{"run", "status", "reset", "doctor", "version"} {
		sub, _, err := cmd.Find([]string{name})
		assert.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"verbose", "dry-run", "yes", "minimal"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}
