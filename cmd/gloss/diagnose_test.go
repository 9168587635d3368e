package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/config"
	"github.com/davetashner/gloss/internal/diagnose"
	"github.com/davetashner/gloss/internal/llm"
)

func TestDiagnose_KeyOK(t *testing.T) {
	m := llm.NewMockProvider()
	m.Models = []string{"gpt-4o", "gpt-4o-mini"}
	setupEnv(t, m)
	t.Setenv(config.EnvAPIKey, testKey)

	stdout, _, err := run(t, "", "diagnose", "key")
	require.NoError(t, err)
	assert.Contains(t, stdout, "API key: OK (sk-test..., env)")
	assert.Contains(t, stdout, "models visible: 2, gpt-4o available: true")
}

func TestDiagnose_KeyMissing(t *testing.T) {
	setupEnv(t, llm.NewMockProvider())

	stdout, _, err := run(t, "", "diagnose", "key")
	requireExit(t, err, ExitCredential)
	assert.Contains(t, stdout, "FAILED")
}

func TestDiagnose_CallJSON(t *testing.T) {
	m := llm.NewMockProvider(llm.MockResponse{Content: "你好，测试成功。"})
	setupEnv(t, m)
	t.Setenv(config.EnvAPIKey, testKey)

	stdout, _, err := run(t, "", "diagnose", "call", "--json")
	require.NoError(t, err)

	var check diagnose.CallCheck
	require.NoError(t, json.Unmarshal([]byte(stdout), &check))
	assert.True(t, check.Success)
	assert.Equal(t, "你好，测试成功。", check.Result)
}

func TestDiagnose_CallFails(t *testing.T) {
	m := llm.NewMockProvider(llm.MockResponse{Err: apperr.FromStatus(429, "")})
	setupEnv(t, m)
	t.Setenv(config.EnvAPIKey, testKey)

	stdout, _, err := run(t, "", "diagnose", "call")
	requireExit(t, err, ExitUpstream)
	assert.Contains(t, stdout, "Completion call: FAILED")
}

func TestDiagnose_NetworkWithoutProbes(t *testing.T) {
	setupEnv(t, llm.NewMockProvider())

	stdout, _, err := run(t, "", "diagnose", "network")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestDiagnose_All(t *testing.T) {
	m := llm.NewMockProvider(llm.MockResponse{Content: "你好。"})
	m.Models = []string{"gpt-4o"}
	setupEnv(t, m)
	t.Setenv(config.EnvAPIKey, testKey)

	stdout, _, err := run(t, "", "diagnose")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gloss diagnosis")
	assert.Contains(t, stdout, "Completion call:")
	assert.NotContains(t, stdout, "Suggested actions")
}

func TestDiagnose_AllReportsBadKey(t *testing.T) {
	m := llm.NewMockProvider()
	m.ListErr = apperr.FromStatus(401, "")
	setupEnv(t, m)
	t.Setenv(config.EnvAPIKey, testKey)

	stdout, _, err := run(t, "", "diagnose", "all", "--json")
	requireExit(t, err, ExitCredential)

	var diag diagnose.Diagnosis
	require.NoError(t, json.Unmarshal([]byte(stdout), &diag))
	assert.False(t, diag.APIKey.Success)
	assert.Nil(t, diag.FullCall, "the call is skipped when the key check fails")
}

func TestDiagnose_RejectsUnknownCheck(t *testing.T) {
	setupEnv(t, llm.NewMockProvider())

	_, _, err := run(t, "", "diagnose", "disk")
	assert.Error(t, err)
}
