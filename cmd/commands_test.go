package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequoia-invest/adviser-tools/internal/monitoring"
	"github.com/sequoia-invest/adviser-tools/internal/projection"
	"github.com/sequoia-invest/adviser-tools/internal/scorer"
)

func TestRiskCommand(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, riskCmd, runRisk, nil, map[string]string{"answers": allFives})
	require.NoError(t, err)
	assert.Contains(t, out, "Profile:      Adventurous (level 5)")
	assert.Contains(t, out, "Recommended funds")
	assert.Contains(t, out, "Sequoia Adventurous Portfolio")
}

func TestRiskCommand_JSON(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, riskCmd, runRisk, nil, map[string]string{"answers": allFives, "format": "json"})
	require.NoError(t, err)
	var body struct {
		Result scorer.RiskResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 5, body.Result.Profile.Level)
}

func TestRiskCommand_Errors(t *testing.T) {
	setTestConfig(t)

	_, err := runCmd(t, riskCmd, runRisk, nil, nil)
	assert.ErrorContains(t, err, "--answers or --file")

	_, err = runCmd(t, riskCmd, runRisk, nil, map[string]string{"answers": "1=5", "file": "x.yaml"})
	assert.ErrorContains(t, err, "not both")

	_, err = runCmd(t, riskCmd, runRisk, nil, map[string]string{"answers": "1=5"})
	assert.True(t, errors.Is(err, scorer.ErrIncompleteAnswers))

	_, err = runCmd(t, riskCmd, runRisk, nil, map[string]string{"answers": allFives, "format": "xml"})
	assert.ErrorContains(t, err, "--format")
}

func TestRiskCommand_SaveThenStats(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, riskCmd, runRisk, nil, map[string]string{"answers": allFives, "save": "true", "client-ref": "C-1"})
	require.NoError(t, err)
	assert.Contains(t, out, "saved assessment ")

	out, err = runCmd(t, statsCmd, runStats, nil, map[string]string{"format": "json"})
	require.NoError(t, err)
	var snap monitoring.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, 1, snap.AssessmentsTotal)
	assert.Equal(t, 24, snap.LookbackHours)

	out, err = runCmd(t, statsCmd, runStats, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Risk profiles:  1")

	_, err = runCmd(t, statsCmd, runStats, nil, map[string]string{"hours": "0"})
	assert.True(t, errors.Is(err, monitoring.ErrLookback))
}

func TestMatchCommand_CSV(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, matchCmd, runMatch, nil, map[string]string{"answers": growthAnswers, "format": "csv"})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
	assert.Contains(t, lines[1], "SQGP")

	out, err = runCmd(t, matchCmd, runMatch, nil, map[string]string{"answers": growthAnswers, "format": "csv", "top": "0"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 7)
}

func TestMatchCommand_Table(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, matchCmd, runMatch, nil, map[string]string{"answers": growthAnswers})
	require.NoError(t, err)
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "SQGP")
	assert.Contains(t, out, "100%")
}

func TestMatchCommand_Errors(t *testing.T) {
	setTestConfig(t)

	_, err := runCmd(t, matchCmd, runMatch, nil, map[string]string{"answers": growthAnswers, "format": "xlsx"})
	assert.ErrorContains(t, err, "requires --output")

	_, err = runCmd(t, matchCmd, runMatch, nil, map[string]string{"answers": "objective=capital-growth"})
	assert.True(t, errors.Is(err, scorer.ErrIncompleteAnswers))
}

func TestMatchCommand_XLSXFile(t *testing.T) {
	setTestConfig(t)
	path := filepath.Join(t.TempDir(), "match.xlsx")

	_, err := runCmd(t, matchCmd, runMatch, nil, map[string]string{"answers": growthAnswers, "format": "xlsx", "output": path})
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestProjectCommand_Defaults(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, projectCmd, runProject, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "ADVISORY")
	assert.Contains(t, out, "£1,043,904")
	assert.Contains(t, out, "£1,144,599")
	assert.Contains(t, out, "£100,695 (9.6%)")
	assert.Contains(t, out, "250 saved")
}

func TestProjectCommand_CustomScenarioCSV(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, projectCmd, runProject, nil, map[string]string{
		"principal": "100000", "contribution": "0", "years": "1",
		"rate-a": "5", "fee-a": "0", "rate-b": "5", "fee-b": "0",
		"format": "csv",
	})
	require.NoError(t, err)
	assert.Equal(t, "Year,Scenario A,Scenario B,Difference\n0,100000,100000,0\n1,105000,105000,0\n", out)
}

func TestProjectCommand_Errors(t *testing.T) {
	setTestConfig(t)

	_, err := runCmd(t, projectCmd, runProject, nil, map[string]string{"approach": "robo"})
	assert.True(t, errors.Is(err, projection.ErrUnknownApproach))

	_, err = runCmd(t, projectCmd, runProject, nil, map[string]string{"years": "-1"})
	assert.ErrorContains(t, err, "--years")
}

func TestProjectCommand_Save(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, projectCmd, runProject, nil, map[string]string{"approach": "diy", "save": "true"})
	require.NoError(t, err)
	assert.Contains(t, out, "DIY")
	assert.Contains(t, out, "saved assessment ")
}

func TestFundsCommand(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, fundsCmd, runFunds, nil, map[string]string{"esg": "true", "format": "csv"})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "esg-balanced,"))

	out, err = runCmd(t, fundsCmd, runFunds, nil, map[string]string{"min-risk": "5"})
	require.NoError(t, err)
	assert.Contains(t, out, "Sequoia Adventurous Portfolio")
	assert.NotContains(t, out, "Sequoia Income Portfolio")

	_, err = runCmd(t, fundsCmd, runFunds, nil, map[string]string{"max-risk": "9"})
	assert.Error(t, err)
}

func TestFundsCompareCommand(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, fundsCompareCmd, runFundsCompare, []string{"income", "growth"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Sequoia Growth Portfolio")
	assert.Contains(t, out, "Sequoia Income Portfolio")
	assert.Contains(t, out, "OCF")

	_, err = runCmd(t, fundsCompareCmd, runFundsCompare, []string{"a", "b"}, nil)
	assert.Error(t, err)
}

func TestFundsRecommendedCommand(t *testing.T) {
	setTestConfig(t)

	out, err := runCmd(t, fundsRecommendedCmd, runFundsRecommended, nil, map[string]string{"risk": "3"})
	require.NoError(t, err)
	assert.Contains(t, out, "Risk level 3")
	assert.Contains(t, out, "Alternatives")

	_, err = runCmd(t, fundsRecommendedCmd, runFundsRecommended, nil, map[string]string{"risk": "7"})
	assert.Error(t, err)
}

func TestMigrateCommand(t *testing.T) {
	setTestConfig(t)
	_, err := runCmd(t, migrateCmd, migrateCmd.RunE, nil, nil)
	require.NoError(t, err)
}
