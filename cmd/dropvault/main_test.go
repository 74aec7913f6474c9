package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "sweep"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	assert.NotNil(t, root.RunE, "running without a subcommand serves")
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, root.PersistentFlags().Lookup("json"))
}

func TestSweepCmd_RejectsArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"sweep", "extra"})

	err := root.Execute()
	assert.Error(t, err)
}

func TestBuildLogger_Level(t *testing.T) {
	t.Cleanup(func() { flagVerbose, flagJSON = false, false })

	flagVerbose, flagJSON = false, true
	assert.False(t, buildLogger().Enabled(context.Background(), slog.LevelDebug))

	flagVerbose = true
	assert.True(t, buildLogger().Enabled(context.Background(), slog.LevelDebug))
}
