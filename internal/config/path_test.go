package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)
	t.Setenv("HOME", home)

	t.Run("empty path stays empty", func(t *testing.T) {
		assert.Equal(t, "", ExpandPath(""))
	})

	t.Run("bare tilde is the home directory", func(t *testing.T) {
		assert.Equal(t, home, ExpandPath("~"))
	})

	t.Run("tilde prefix joins onto home", func(t *testing.T) {
		assert.Equal(t, filepath.Join(home, "outlay", "db.sqlite"), ExpandPath("~/outlay/db.sqlite"))
	})

	t.Run("environment variables are substituted", func(t *testing.T) {
		t.Setenv("OUTLAY_DIR", "/var/lib/outlay")
		assert.Equal(t, "/var/lib/outlay/db.sqlite", ExpandPath("$OUTLAY_DIR/db.sqlite"))
	})

	t.Run("plain path passes through", func(t *testing.T) {
		assert.Equal(t, "/tmp/db.sqlite", ExpandPath("/tmp/db.sqlite"))
	})
}
