package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "jfa", cmd.Use)
	assert.Contains(t, cmd.Long, "expected reward")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"solve", "generate", "batch", "validate", "scenario"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestBatchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	batchCmd, _, err := cmd.Find([]string{"batch"})
	require.NoError(t, err)

	defaults := map[string]string{
		"effectors":      "3",
		"targets":        "9",
		"quantity":       "1",
		"offset":         "0",
		"solve":          "true",
		"save":           "false",
		"digits":         "5",
		"ext":            ".json",
		"seed":           "1",
		"max-expansions": "0",
	}
	for name, want := range defaults {
		flag := batchCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, want, flag.DefValue, name)
	}
	for _, name := range []string{"db", "csv", "metrics-file", "config", "solvers", "dir", "prefix", "suffix"} {
		assert.NotNil(t, batchCmd.Flags().Lookup(name), name)
	}
}

func TestGenerateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	genCmd, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)

	assert.NotNil(t, genCmd.Flags().Lookup("effectors"))
	assert.NotNil(t, genCmd.Flags().Lookup("seed"))
	assert.Nil(t, genCmd.Flags().Lookup("solvers"), "generate does not solve")
	assert.Nil(t, genCmd.Flags().Lookup("db"))
}

func TestScenarioCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	scenarioCmd, _, err := cmd.Find([]string{"scenario"})
	require.NoError(t, err)

	updateFlag := scenarioCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	assert.NotNil(t, scenarioCmd.Flags().Lookup("filter"))
	assert.NotNil(t, scenarioCmd.Flags().Lookup("golden"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "invalid", "validate", "x.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
