//go:build !integration

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"prepare", "parse", "enrich", "merge", "report", "serve", "runs"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "integrations-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestPrepareCommand_Flags(t *testing.T) {
	flag := prepareCmd.Flags().Lookup("input")
	require.NotNil(t, flag, "prepare command should have --input flag")

	rules := prepareCmd.Flags().Lookup("rules")
	require.NotNil(t, rules, "prepare command should have --rules flag")
}

func TestParseCommand_Flags(t *testing.T) {
	flag := parseCmd.Flags().Lookup("no-cache")
	require.NotNil(t, flag, "parse command should have --no-cache flag")
	assert.Equal(t, "false", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunsCommand_Flags(t *testing.T) {
	flag := runsCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "runs command should have --limit flag")
	assert.Equal(t, "20", flag.DefValue)
}
