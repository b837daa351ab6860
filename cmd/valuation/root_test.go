package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/valuation-server/internal/industry"
	"github.com/godilite/valuation-server/internal/valuation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	oldCfg, oldLogger := cfg, logger
	t.Cleanup(func() { cfg, logger = oldCfg, oldLogger })

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCmd_PersistentPreRunE_WithConfigFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: error\ngrpc:\n  port: 6001\n")

	oldPath, oldCfg := configPath, cfg
	defer func() { configPath, cfg = oldPath, oldCfg }()
	configPath = path

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	require.NotNil(t, cfg)
	require.NotNil(t, logger)
	assert.Equal(t, 6001, cfg.GRPC.Port)
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	path := writeConfig(t, "log:\n  level: NOT_A_LEVEL\n")

	oldPath, oldCfg := configPath, cfg
	defer func() { configPath, cfg = oldPath, oldCfg }()
	configPath = path

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}

func TestRootCmd_PersistentPreRunE_MissingConfigFile(t *testing.T) {
	oldPath := configPath
	defer func() { configPath = oldPath }()
	configPath = filepath.Join(t.TempDir(), "absent.yaml")

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestEvaluateCmd_HJSONFromStdin(t *testing.T) {
	path := writeConfig(t, "log:\n  level: error\n")
	doc := `{
  # owner-reported figures
  tier: free
  financials: {
    net_income: "$100,000"
    interest_expense: 20000
    tax_expense: 30000
    depreciation: 10000
  }
  value_drivers: {
    managementTeam: B
    financialPerformance: b
  }
}`

	out, err := execute(t, doc, "evaluate", "--config", path, "--input", "-")
	require.NoError(t, err)

	var got evaluationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 160000.0, got.Result.AdjustedEBITDA)
	assert.Equal(t, valuation.GradeB, got.Result.OverallGrade)
	assert.Equal(t, industry.SourceDefault, got.Result.MultipleSource)
	assert.InDelta(t, 800000, got.Result.MidEstimate, 1e-6)
	assert.Equal(t, valuation.TierFree, got.Tier)
	assert.Len(t, got.ValueDrivers, 2)
}

func TestEvaluateCmd_FileInput(t *testing.T) {
	path := writeConfig(t, "log:\n  level: error\n")
	input := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"financials": {"net_income": 50000}, "industry": {"code": "541511"}}`), 0o644))

	out, err := execute(t, "", "evaluate", "--config", path, "--input", input)
	require.NoError(t, err)

	var got evaluationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, industry.SourceExact, got.Result.MultipleSource)
	assert.Equal(t, 3.0, got.Result.AverageScore)
}

func TestEvaluateCmd_Errors(t *testing.T) {
	path := writeConfig(t, "log:\n  level: error\n")

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "", "evaluate", "--config", path, "--input", filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("mixed driver shapes", func(t *testing.T) {
		_, err := execute(t, `{"value_drivers": {"managementTeam": "A", "riskFactors": 2}}`, "evaluate", "--config", path, "--input", "-")
		assert.ErrorIs(t, err, valuation.ErrMalformedInput)
	})

	t.Run("not a document", func(t *testing.T) {
		_, err := parseDocument([]byte(`[1, 2`))
		assert.ErrorIs(t, err, valuation.ErrMalformedInput)
	})
}

func TestResolveCmd(t *testing.T) {
	path := writeConfig(t, "log:\n  level: error\n")

	out, err := execute(t, "", "resolve", "--config", path, "--code", "541511", "--description", "", "--score", "4")
	require.NoError(t, err)

	var got industry.Resolution
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, industry.SourceExact, got.Source)
	assert.Equal(t, industry.BandPremium, got.Band)
	assert.Greater(t, got.Multiple, 0.0)

	out, err = execute(t, "", "resolve", "--config", path, "--code", "", "--description", "", "--score", "3")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, industry.SourceDefault, got.Source)
	assert.Equal(t, 5.0, got.Multiple)
}
