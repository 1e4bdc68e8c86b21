package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "snapshot"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("mock"))
	assert.NotNil(t, root.PersistentFlags().Lookup("mock-dir"))
}

func TestSnapshotCommandWithMockAPI(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEPLOYMENT_MODE", "local")
	t.Setenv("LOCAL_SNAPSHOTS_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"snapshot", "--mock"})
	require.NoError(t, root.Execute())

	assert.True(t, strings.HasPrefix(out.String(), dir), out.String())
	pages, err := filepath.Glob(filepath.Join(dir, "*", "*", "*", "*", "dashboard.html"))
	require.NoError(t, err)
	assert.Len(t, pages, 1)

	books, err := filepath.Glob(filepath.Join(dir, "*", "*", "*", "*", "chart-data.xlsx"))
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestSnapshotCommandRejectsBadConfig(t *testing.T) {
	t.Setenv("DEPLOYMENT_MODE", "gcs")
	t.Setenv("GCS_BUCKET", "")

	root := newRootCmd()
	root.SetArgs([]string{"snapshot", "--mock"})
	assert.ErrorContains(t, root.Execute(), "GCS_BUCKET")
}
