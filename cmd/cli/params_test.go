package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/dc-azure-ocr/pkg/azuredi"
)

const sampleParams = `{
  "id": "0b6f0a3e-3c55-4f5b-9f1d-6db2c0c6a8b1",
  "documents": [20059100, 20059101],
  "query": "",
  "user": 1,
  "organization": 123,
  "data": {}
}`

func TestParseParams(t *testing.T) {
	params, err := parseParams(sampleParams)
	require.NoError(t, err)
	assert.Equal(t, []int64{20059100, 20059101}, params.Documents)
	assert.Equal(t, "123", params.organizationID())
	assert.Equal(t, "0b6f0a3e-3c55-4f5b-9f1d-6db2c0c6a8b1", params.ID)
}

func TestParseParams_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"query": "user:1", "organization": "org-7"}`), 0o644))

	params, err := parseParams("@" + path)
	require.NoError(t, err)
	assert.Equal(t, "user:1", params.Query)
	assert.Equal(t, "org-7", params.organizationID())
}

func TestParseParams_Invalid(t *testing.T) {
	_, err := parseParams("{")
	assert.Error(t, err)

	_, err = parseParams("@/does/not/exist.json")
	assert.Error(t, err)
}

func TestBuildRunOptions_FlagsOverrideParams(t *testing.T) {
	params, err := parseParams(sampleParams)
	require.NoError(t, err)

	opts, err := buildRunOptions(params, []int64{5}, "", "9", "")
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, opts.Selection.IDs)
	assert.Equal(t, "9", opts.OrganizationID)
	assert.Equal(t, params.ID, opts.RunID)
	assert.Equal(t, azuredi.ModelRead, opts.Model)
}

func TestBuildRunOptions_NoParams(t *testing.T) {
	opts, err := buildRunOptions(nil, nil, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, azuredi.ModelRead, opts.Model)
	assert.True(t, opts.Selection.Empty())
	assert.Empty(t, opts.OrganizationID)
}

func TestBuildRunOptions_InvalidRunID(t *testing.T) {
	_, err := buildRunOptions(nil, []int64{1}, "", "1", "run-1")
	assert.Error(t, err)
}
