package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/sequoia-invest/adviser-tools/internal/config"
)

// setTestConfig points the global config at a fresh SQLite file.
func setTestConfig(t *testing.T) {
	t.Helper()
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		},
		Log:        config.LogConfig{Level: "info", Format: "json"},
		Match:      config.DefaultMatchConfig(),
		Projection: config.DefaultProjectionConfig(),
		Batch:      config.BatchConfig{MaxConcurrent: 4},
	}
}

// resetFlags restores every flag on cmd to its default.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// runCmd runs fn with only the given flags set. Flags are reset before the
// run and again when the test ends.
func runCmd(t *testing.T, cmd *cobra.Command, fn func(*cobra.Command, []string) error, args []string, flags map[string]string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(cmd) })
	resetFlags(cmd)
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	err := fn(cmd, args)
	return out.String(), err
}

const allFives = "1=5,2=5,3=5,4=5,5=5,6=5,7=5,8=5,9=5,10=5"

const growthAnswers = "objective=capital-growth,timeHorizon=very-long,riskTolerance=aggressive," +
	"incomeNeeds=no-income,esgPreference=not-important,investmentSize=under-100k"
