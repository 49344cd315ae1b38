package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "risk", "match", "project", "funds", "batch", "migrate", "stats"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "adviser", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestFundsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range fundsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["compare"])
	assert.True(t, names["recommended"])
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		name string
		flag string
		def  string
	}{
		{"serve", "port", "0"},
		{"risk", "save", "false"},
		{"match", "format", "table"},
		{"project", "approach", ""},
		{"batch", "concurrency", "0"},
		{"stats", "hours", "24"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.flag, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.name})
			require.NoError(t, err)
			f := cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}
