package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardwatch-dev/cardwatch/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "cardwatch-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "cardwatch")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/cardwatch")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runCardwatch(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runCardwatch(t, nil, "init", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Initialized cardwatch project")

	for _, d := range []string{"data", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runCardwatch(t, nil, "init", dir, "--scorer-url", "http://scorer:81/predict", "--format", "simple")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "cardwatch.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://scorer:81/predict", cfg.Scorer.URL)
	assert.Equal(t, "simple", cfg.Data.Format)
	assert.Equal(t, config.ProviderTemplate, cfg.Explainer.Provider)
	assert.Equal(t, "probability >= 0.3 && probability <= 0.7", cfg.Review.EscalateWhen)
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runCardwatch(t, nil, "init", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	for _, pattern := range []string{"logs/", ".env"} {
		assert.Contains(t, string(data), pattern, ".gitignore should contain %s", pattern)
	}
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runCardwatch(t, nil, "init", dir)
	require.NoError(t, err)

	out, err := runCardwatch(t, nil, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")

	_, err = runCardwatch(t, nil, "init", dir, "--force")
	require.NoError(t, err)
}

func TestInit_UnknownFormat(t *testing.T) {
	out, err := runCardwatch(t, nil, "init", t.TempDir(), "--format", "chase")
	require.Error(t, err)
	assert.Contains(t, out, "unknown transaction format")
}
